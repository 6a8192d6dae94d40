package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"resume-builder/resume/model"
)

//go:embed templates/preview.html.tmpl
var templateFiles embed.FS

var previewTemplate = template.Must(template.ParseFS(templateFiles, "templates/preview.html.tmpl"))

// HTML renders the document preview as a standalone HTML page.
func HTML(doc model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, Project(doc)); err != nil {
		return nil, fmt.Errorf("render html preview: %w", err)
	}
	return buf.Bytes(), nil
}

// Text renders the document preview as plain text.
func Text(doc model.Document) string {
	p := Project(doc)
	var b strings.Builder
	if p.Header.Name != "" {
		b.WriteString(p.Header.Name)
		b.WriteByte('\n')
	}
	if len(p.Header.Contact) > 0 {
		b.WriteString(strings.Join(p.Header.Contact, " • "))
		b.WriteByte('\n')
	}
	if p.Summary != "" {
		b.WriteByte('\n')
		b.WriteString(p.Summary)
		b.WriteByte('\n')
	}
	for _, s := range p.Sections {
		b.WriteByte('\n')
		b.WriteString(strings.ToUpper(s.Title))
		b.WriteByte('\n')
		if len(s.Items) > 0 {
			b.WriteString(strings.Join(s.Items, ", "))
			b.WriteByte('\n')
		}
		for _, e := range s.Entries {
			line := e.Title
			if e.Subtitle != "" {
				line += ", " + e.Subtitle
			}
			if e.Dates != "" {
				line += " (" + e.Dates + ")"
			}
			b.WriteString(line)
			b.WriteByte('\n')
			if e.Note != "" {
				b.WriteString(e.Note)
				b.WriteByte('\n')
			}
			if e.Detail != "" {
				b.WriteString(e.Detail)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
