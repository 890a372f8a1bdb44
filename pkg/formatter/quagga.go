package formatter

import (
	"strings"
	"text/template"
)

var quaggaPeer = template.Must(template.New("quagga").Parse(`neighbor {{.Peer}} remote-as {{.ASN}}
neighbor {{.Peer}} description {{.Name}}
neighbor {{.Peer}} peer-group {{.Template}}
{{- if .Passive}}
neighbor {{.Peer}} passive
{{- end}}`))

// QuaggaFormatter renders flat neighbor statements, meant to be included
// inside a `router bgp` section.
type QuaggaFormatter struct {
	doc document
}

// NewQuagga creates an empty quagga formatter
func NewQuagga() *QuaggaFormatter {
	return &QuaggaFormatter{doc: document{sep: "\n"}}
}

func (f *QuaggaFormatter) AddData(asn, name, template, peer string, passive bool) {
	f.doc.render(quaggaPeer, peerData{
		ASN:      asn,
		Name:     name,
		Template: template,
		Peer:     peer,
		Passive:  passive,
	})
}

// AddComment adds text as "! " prefixed lines
func (f *QuaggaFormatter) AddComment(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "! " + line
	}
	f.doc.add(strings.Join(lines, "\n"))
}

func (f *QuaggaFormatter) Finalize() (string, error) {
	return f.doc.finalize()
}
