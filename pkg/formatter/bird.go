package formatter

import "text/template"

// BirdNameLimit is the longest protocol name bird accepts
const BirdNameLimit = 32

var birdPeer = template.Must(template.New("bird").Parse(`protocol bgp {{.Name}} from {{.Template}} {
  neighbor {{.Peer}} as {{.ASN}};
{{- if .Passive}}
  passive yes;
{{- end}}
}`))

// BirdFormatter renders one protocol block per peer
type BirdFormatter struct {
	doc document
}

// NewBird creates an empty bird formatter
func NewBird() *BirdFormatter {
	return &BirdFormatter{doc: document{sep: "\n\n"}}
}

func (f *BirdFormatter) AddData(asn, name, template, peer string, passive bool) {
	f.doc.render(birdPeer, peerData{
		ASN:      asn,
		Name:     truncate(name, BirdNameLimit),
		Template: template,
		Peer:     peer,
		Passive:  passive,
	})
}

func (f *BirdFormatter) Finalize() (string, error) {
	return f.doc.finalize()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
