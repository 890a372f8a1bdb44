// Package generator wires community sources, peer extraction, reachability
// probing and formatting into one configuration run.
package generator

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pablomonte/mkbgp/pkg/community"
	"github.com/pablomonte/mkbgp/pkg/extract"
	"github.com/pablomonte/mkbgp/pkg/formatter"
	"github.com/pablomonte/mkbgp/pkg/metrics"
	"github.com/pablomonte/mkbgp/pkg/probe"
	"github.com/pablomonte/mkbgp/pkg/types"
)

// Config holds the settings of one run
type Config struct {
	Family          types.Family
	Format          formatter.Kind
	DefaultTemplate string
	Templates       map[string]string // community -> template overrides
	Prefix          string            // prepended to every peer name
	Timeout         time.Duration     // probe timeout, <= 0 disables probing
	Interface       string            // zone for link-local IPv6 peers
	Concurrency     int               // probe cap, <= 0 means one probe per peer
	Comments        bool              // emit a comment per community where supported
}

// Validate reports configuration errors before any work is done
func (c Config) Validate() error {
	if _, err := types.ParseFamily(string(c.Family)); err != nil {
		return err
	}
	if _, err := formatter.ParseKind(string(c.Format)); err != nil {
		return err
	}
	return types.NewTemplateMap(c.DefaultTemplate, c.Templates).Validate()
}

// Report describes what a run did, for logging
type Report struct {
	Peers   []types.Peer
	Skipped []extract.Skipped
	Probe   probe.Result
}

// Generator produces peer configuration from a community source
type Generator struct {
	cfg       Config
	templates types.TemplateMap
	source    community.Source
	prober    *probe.Prober
	logger    *log.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger for progress messages
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithProber replaces the prober built from Config.Timeout/Concurrency
func WithProber(p *probe.Prober) Option {
	return func(g *Generator) { g.prober = p }
}

// New validates cfg and creates a Generator
func New(cfg Config, source community.Source, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Family, _ = types.ParseFamily(string(cfg.Family))
	cfg.Format, _ = formatter.ParseKind(string(cfg.Format))

	g := &Generator{
		cfg:       cfg,
		templates: types.NewTemplateMap(cfg.DefaultTemplate, cfg.Templates),
		source:    source,
		prober:    probe.New(cfg.Timeout, probe.WithConcurrency(cfg.Concurrency)),
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs extraction, probing and formatting and returns the
// complete document. Nothing is returned on error.
func (g *Generator) Generate(ctx context.Context) (string, Report, error) {
	var report Report

	communities, err := g.source.Communities(ctx)
	if err != nil {
		return "", report, fmt.Errorf("failed to load communities: %w", err)
	}

	peers, skipped := extract.Peers(communities, g.cfg.Family, g.cfg.Interface)
	for _, s := range skipped {
		g.logger.Printf("⚠ Skipping community %s: %s", s.Community, s.Reason)
	}
	metrics.CommunitiesSkipped.Add(float64(len(skipped)))
	g.logger.Printf("✓ Extracted %d %s peers from %d communities", len(peers), g.cfg.Family, len(communities))

	report.Peers = peers
	report.Skipped = skipped

	if g.prober.Enabled() {
		report.Probe = g.prober.Probe(ctx, peers)
		if err := ctx.Err(); err != nil {
			return "", report, fmt.Errorf("probing interrupted: %w", err)
		}
		g.logProbe(peers, report.Probe)
	}

	out, err := g.render(peers)
	if err != nil {
		return "", report, err
	}

	passive := 0
	for _, p := range peers {
		if p.Passive {
			passive++
		}
	}
	metrics.PeersGenerated.WithLabelValues(string(g.cfg.Family), "true").Set(float64(passive))
	metrics.PeersGenerated.WithLabelValues(string(g.cfg.Family), "false").Set(float64(len(peers) - passive))

	return out, report, nil
}

func (g *Generator) render(peers []types.Peer) (string, error) {
	f, err := formatter.New(g.cfg.Format)
	if err != nil {
		return "", err
	}
	commenter, canComment := f.(formatter.Commenter)

	current := ""
	for i, p := range peers {
		if g.cfg.Comments && canComment && (i == 0 || p.Community != current) {
			commenter.AddComment("community " + p.Community)
		}
		current = p.Community

		f.AddData(p.ASN, g.cfg.Prefix+p.Host, g.templates.Lookup(p.Community), p.Address, p.Passive)
	}

	out, err := f.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to render configuration: %w", err)
	}
	return out, nil
}

func (g *Generator) logProbe(peers []types.Peer, result probe.Result) {
	if result.Fallback {
		g.logger.Printf("⚠ None of %d peers reachable, configuring all peers as active", result.Probed)
		return
	}

	g.logger.Printf("✓ Probed %d peers: %d reachable, %d passive",
		result.Probed, result.Reachable, result.Unreachable)
	for _, p := range peers {
		if p.Passive {
			g.logger.Printf("   passive: %v", p)
		}
	}
}
