// Package formatter renders BGP peers as routing daemon configuration.
//
// A Formatter collects one block per peer and joins them into the final
// document on Finalize. Formatters are single use: adding peers after
// Finalize panics, finalizing twice returns ErrFinalized.
package formatter

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Kind selects a configuration dialect
type Kind string

const (
	Bird   Kind = "bird"
	Quagga Kind = "quagga"
)

var (
	// ErrUnknownFormat is returned for dialects other than bird/quagga
	ErrUnknownFormat = errors.New("unknown formatter")

	// ErrFinalized is returned when Finalize is called more than once
	ErrFinalized = errors.New("formatter already finalized")
)

// Formatter accumulates peer blocks for one document
type Formatter interface {
	// AddData appends the configuration for one peer
	AddData(asn, name, template, peer string, passive bool)

	// Finalize returns the complete document and consumes the formatter
	Finalize() (string, error)
}

// Commenter is implemented by formatters whose dialect has comments
type Commenter interface {
	AddComment(text string)
}

// ParseKind converts a formatter selector into a Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Bird, Quagga:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// New creates an empty formatter of the given kind
func New(kind Kind) (Formatter, error) {
	switch kind {
	case Bird:
		return NewBird(), nil
	case Quagga:
		return NewQuagga(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, kind)
	}
}

// peerData is the input of the per-peer templates
type peerData struct {
	ASN      string
	Name     string
	Template string
	Peer     string
	Passive  bool
}

// document is the block list shared by both dialects
type document struct {
	sep    string
	blocks []string
	err    error
	done   bool
}

func (d *document) add(block string) {
	if d.done {
		panic("formatter: AddData after Finalize")
	}
	d.blocks = append(d.blocks, block)
}

func (d *document) render(t *template.Template, data peerData) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		if d.err == nil {
			d.err = fmt.Errorf("failed to render peer %s: %w", data.Name, err)
		}
		return
	}
	d.add(b.String())
}

func (d *document) finalize() (string, error) {
	if d.done {
		return "", ErrFinalized
	}
	d.done = true

	blocks, err := d.blocks, d.err
	d.blocks = nil
	if err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return "", nil
	}
	return strings.Join(blocks, d.sep) + "\n", nil
}
