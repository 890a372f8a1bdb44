package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pablomonte/mkbgp/pkg/community"
	"github.com/pablomonte/mkbgp/pkg/daemon"
	"github.com/pablomonte/mkbgp/pkg/extract"
	"github.com/pablomonte/mkbgp/pkg/formatter"
	"github.com/pablomonte/mkbgp/pkg/generator"
	"github.com/pablomonte/mkbgp/pkg/metrics"
	"github.com/pablomonte/mkbgp/pkg/probe"
	"github.com/pablomonte/mkbgp/pkg/types"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// stringList collects a repeatable flag
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

var (
	family        = flag.String("family", string(types.IPv6), "address family: ipv4 or ipv6")
	only4         = flag.Bool("4", false, "shorthand for -family ipv4")
	only6         = flag.Bool("6", false, "shorthand for -family ipv6")
	sourceKind    = flag.String("source", "dir", "community source: dir or etcd")
	sourceDir     = flag.String("s", ".", "community data directory")
	etcdEndpoints = flag.String("etcd", "localhost:2379", "etcd endpoints (comma-separated)")
	etcdPrefix    = flag.String("etcd-prefix", community.DefaultEtcdPrefix, "etcd key prefix of community records")
	format        = flag.String("f", string(formatter.Bird), "output format: bird or quagga")
	prefix        = flag.String("p", "", "prefix for peer names")
	defTemplate   = flag.String("d", "peers", "default peer template / peer-group")
	timeout       = flag.Float64("timeout", probe.DefaultTimeout.Seconds(), "probe timeout in seconds, 0 disables probing")
	concurrency   = flag.Int("probe-concurrency", probe.DefaultConcurrency, "maximum simultaneous probes, 0 for no limit")
	iface         = flag.String("i", extract.DefaultInterface, "interface for link-local IPv6 peers")
	comments      = flag.Bool("comments", false, "emit a comment before each community (quagga only)")
	outputFile    = flag.String("o", "", "write configuration to this file instead of stdout")
	reloadCmd     = flag.String("reload", "", "command to run when the -o file changed, e.g. \"birdc configure\"")
	metricsFile   = flag.String("metrics-file", "", "write probe metrics to this node_exporter textfile")
	verbose       = flag.Bool("v", false, "verbose logging")

	excludes  stringList
	templates stringList
)

func main() {
	flag.Var(&excludes, "x", "exclude community (repeatable)")
	flag.Var(&templates, "t", "community:template override (repeatable)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Printf("Received signal: %v", sig)
		cancel()
	}()

	source, closeSource, err := openSource()
	if err != nil {
		log.Fatalf("Failed to open community source: %v", err)
	}
	defer closeSource()

	gen, err := generator.New(cfg, source, generator.WithLogger(logger))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	out, _, err := gen.Generate(ctx)
	if err != nil {
		log.Fatalf("Failed to generate configuration: %v", err)
	}

	if *metricsFile != "" {
		if err := metrics.WriteTextfile(*metricsFile); err != nil {
			log.Printf("⚠ %v", err)
		}
	}

	if *outputFile == "" {
		fmt.Print(out)
		return
	}

	manager := daemon.NewManager(*outputFile, *reloadCmd)
	changed, err := manager.WriteConfig(out)
	if err != nil {
		log.Fatalf("Failed to write configuration: %v", err)
	}
	if !changed {
		logger.Printf("✓ %s unchanged", manager.Path())
		return
	}
	logger.Printf("✓ Wrote %s", manager.Path())

	if *reloadCmd != "" {
		if err := manager.Reload(); err != nil {
			log.Fatalf("Failed to reload daemon: %v", err)
		}
		logger.Println("✓ Daemon reloaded")
	}
}

// buildConfig converts the flags into a validated generator.Config
func buildConfig() (generator.Config, error) {
	selected := *family
	switch {
	case *only4 && *only6:
		return generator.Config{}, fmt.Errorf("%w: -4 and -6 are mutually exclusive", types.ErrUnsupportedFamily)
	case *only4:
		selected = string(types.IPv4)
	case *only6:
		selected = string(types.IPv6)
	}

	fam, err := types.ParseFamily(selected)
	if err != nil {
		return generator.Config{}, err
	}

	kind, err := formatter.ParseKind(*format)
	if err != nil {
		return generator.Config{}, err
	}

	overrides, err := types.ParseTemplateOverrides(templates)
	if err != nil {
		return generator.Config{}, err
	}

	cfg := generator.Config{
		Family:          fam,
		Format:          kind,
		DefaultTemplate: *defTemplate,
		Templates:       overrides,
		Prefix:          *prefix,
		Timeout:         time.Duration(*timeout * float64(time.Second)),
		Interface:       *iface,
		Concurrency:     *concurrency,
		Comments:        *comments,
	}
	return cfg, cfg.Validate()
}

// openSource creates the community source selected by -source
func openSource() (community.Source, func(), error) {
	switch *sourceKind {
	case "dir":
		return community.NewDirSource(*sourceDir, excludes), func() {}, nil

	case "etcd":
		cli, err := clientv3.New(clientv3.Config{
			Endpoints:   strings.Split(*etcdEndpoints, ","),
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to etcd: %w", err)
		}
		return community.NewEtcdSource(cli, *etcdPrefix, excludes), func() { cli.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q (expected dir or etcd)", *sourceKind)
	}
}
