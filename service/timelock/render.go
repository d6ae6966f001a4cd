package timelock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"huski/core"
)

func codeBlock(data []byte, tag string) []byte {
	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, "```%s\n", tag)
	b.Write(data)
	b.WriteByte('\n')
	b.WriteString("```")

	return b.Bytes()
}

const proposalTpl = `### {{.Short}} "{{.Action}}" {{.Status}}

- creator: {{.Creator}}
- eta: {{.ETA}}

{{.Content}}
`

var proposalView = template.Must(template.New("proposal").Parse(proposalTpl))

// Status queued, executed or canceled
func Status(p *core.Proposal) string {
	switch {
	case p.ExecutedAt.Valid:
		return "executed"
	case p.CanceledAt.Valid:
		return "canceled"
	default:
		return "queued"
	}
}

// Render markdown summary of a proposal
func Render(p *core.Proposal) []byte {
	short := p.Hash
	if len(short) > 8 {
		short = short[:8]
	}

	content := []byte(p.Content)
	if pretty, err := json.MarshalIndent(json.RawMessage(p.Content), "", "  "); err == nil {
		content = pretty
	}

	var b bytes.Buffer
	_ = proposalView.Execute(&b, map[string]interface{}{
		"Short":   short,
		"Action":  p.Action.String(),
		"Status":  Status(p),
		"Creator": p.Creator,
		"ETA":     p.ETA.Format(time.RFC3339),
		"Content": string(codeBlock(content, "json")),
	})

	return b.Bytes()
}
