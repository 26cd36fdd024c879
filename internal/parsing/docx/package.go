package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// ooxmlPackage is an opened .docx zip archive with its parts indexed by
// full in-archive path (e.g. "word/document.xml").
type ooxmlPackage struct {
	parts map[string]*zip.File
}

func openPackage(data []byte) (*ooxmlPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid OOXML zip package: %w", err)
	}
	pkg := &ooxmlPackage{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pkg.parts[f.Name] = f
	}
	return pkg, nil
}

func (p *ooxmlPackage) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

func (p *ooxmlPackage) open(name string) (io.ReadCloser, error) {
	f, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %q not found in package", name)
	}
	return f.Open()
}

func (p *ooxmlPackage) readXML(name string) (*node, error) {
	r, err := p.open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseXML(r)
}

func (p *ooxmlPackage) readBytes(name string) ([]byte, error) {
	r, err := p.open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// mediaParts returns every part under word/media/, in archive order.
func (p *ooxmlPackage) mediaParts() []string {
	var out []string
	for name := range p.parts {
		if strings.HasPrefix(name, "word/media/") {
			out = append(out, name)
		}
	}
	// Stable, deterministic ordering independent of map iteration.
	sortStrings(out)
	return out
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// documentRels parses word/_rels/document.xml.rels into rId -> target.
func (p *ooxmlPackage) documentRels() (map[string]string, error) {
	rels := make(map[string]string)
	if !p.has("word/_rels/document.xml.rels") {
		return rels, nil
	}
	root, err := p.readXML("word/_rels/document.xml.rels")
	if err != nil {
		return nil, err
	}
	for _, rel := range root.findAll("Relationship") {
		id, _ := rel.attr("Id")
		target, _ := rel.attr("Target")
		if id != "" && target != "" {
			rels[id] = path.Join("word", target)
		}
	}
	return rels, nil
}
