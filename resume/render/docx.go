package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"resume-builder/resume/model"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

// DOCX renders the document preview as a Word document.
func DOCX(doc model.Document) ([]byte, error) {
	body := documentXML(Project(doc))
	if err := validateDocumentXML(body); err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", body},
	}
	for _, part := range parts {
		if err := writeZipFile(writer, part.name, part.content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func documentXML(p Preview) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)

	if p.Header.Name != "" {
		writeParagraph(&b, "name", p.Header.Name)
	}
	if len(p.Header.Contact) > 0 {
		writeParagraph(&b, "meta", strings.Join(p.Header.Contact, " | "))
	}
	if p.Summary != "" {
		writeParagraph(&b, "body", p.Summary)
	}
	for _, section := range p.Sections {
		writeParagraph(&b, "sectionHeading", section.Title)
		if len(section.Items) > 0 {
			writeParagraph(&b, "body", strings.Join(section.Items, ", "))
		}
		for _, entry := range section.Entries {
			role := entry.Title
			if entry.Subtitle != "" {
				role += ", " + entry.Subtitle
			}
			writeParagraph(&b, "roleLine", role)
			if entry.Dates != "" {
				writeParagraph(&b, "meta", entry.Dates)
			}
			if entry.Note != "" {
				writeParagraph(&b, "meta", entry.Note)
			}
			for _, line := range strings.Split(entry.Detail, "\n") {
				if strings.TrimSpace(line) != "" {
					writeParagraph(&b, "body", line)
				}
			}
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, style, text string) {
	b.WriteString("<w:p><w:r>")
	writeRunProperties(b, StyleMap[style])
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString("</w:t></w:r></w:p>")
}

func writeRunProperties(b *bytes.Buffer, style RunStyle) {
	if style == (RunStyle{}) {
		return
	}
	b.WriteString("<w:rPr>")
	if style.Bold {
		b.WriteString("<w:b/>")
	}
	if style.Italic {
		b.WriteString("<w:i/>")
	}
	if style.Color != "" {
		b.WriteString(`<w:color w:val="` + style.Color + `"/>`)
	}
	if style.Size > 0 {
		b.WriteString(`<w:sz w:val="` + strconv.Itoa(style.Size) + `"/>`)
	}
	b.WriteString("</w:rPr>")
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	if _, err := dst.Write(content); err != nil {
		return err
	}
	return nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func validateDocumentXML(content []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w", err)
		}
	}
}
