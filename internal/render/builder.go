package render

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// builder assembles a minimal but valid OOXML package: content types,
// package-level relationships, and whatever parts addPart accumulates.
type builder struct {
	parts      map[string][]byte
	mediaRels  []mediaRel
	mediaCount int
}

type mediaRel struct {
	id, target, contentType string
}

func newBuilder() *builder {
	return &builder{parts: make(map[string][]byte)}
}

func (b *builder) addPart(name string, data []byte) {
	b.parts[name] = data
}

// addMedia stores an image part and returns its relationship id (rIdN) for
// use in a Drawing's Blip embed reference.
func (b *builder) addMedia(ext string, contentType string, data []byte) string {
	b.mediaCount++
	name := fmt.Sprintf("word/media/image%d.%s", b.mediaCount, ext)
	id := fmt.Sprintf("rIdImg%d", b.mediaCount)
	b.addPart(name, data)
	b.mediaRels = append(b.mediaRels, mediaRel{id: id, target: "media/image" + fmt.Sprintf("%d.%s", b.mediaCount, ext), contentType: contentType})
	return id
}

func (b *builder) finalizeRelationships() {
	b.addPart("[Content_Types].xml", []byte(contentTypesXML(b.mediaRels)))
	b.addPart("_rels/.rels", []byte(packageRelsXML))
	b.addPart("word/_rels/document.xml.rels", []byte(documentRelsXML(b.mediaRels)))
}

func (b *builder) build() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range b.parts {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

func documentRelsXML(rels []mediaRel) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`, r.id, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypesXML(rels []mediaRel) string {
	seen := map[string]bool{}
	var extra bytes.Buffer
	for _, r := range rels {
		ext := extOf(r.target)
		if seen[ext] {
			continue
		}
		seen[ext] = true
		fmt.Fprintf(&extra, `<Default Extension="%s" ContentType="%s"/>`, ext, r.contentType)
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		extra.String() +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`</Types>`
}

func extOf(target string) string {
	for i := len(target) - 1; i >= 0; i-- {
		if target[i] == '.' {
			return target[i+1:]
		}
	}
	return "png"
}
