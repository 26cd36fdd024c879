package docx

import (
	"strings"

	"github.com/brillob/dtce/internal/types"
)

// treeFrame is one stack frame of the Pass 4 tree build.
type treeFrame struct {
	section *types.Section
	level   int
	buffer  strings.Builder
}

// buildSections runs Pass 4: it walks paragraphs in document order next to
// their (possibly nil) heading candidates and produces the section tree
// plus the flat ContentSection list.
func buildSections(paras []paragraphFeatures, headings []*headingCandidate) (types.SectionHierarchy, []types.ContentSection) {
	var roots []types.Section
	var stack []*treeFrame
	var flat []types.ContentSection
	sectionCounter, subsectionCounter := 0, 0

	emit := func(f *treeFrame) {
		text := strings.TrimSpace(f.buffer.String())
		if text == "" {
			return
		}
		flat = append(flat, types.ContentSection{
			PlaceholderId: f.section.PlaceholderId,
			SectionTitle:  f.section.SectionTitle,
			SampleText:    text,
			WordCount:     len(wordRe.FindAllString(text, -1)),
		})
	}

	for i, p := range paras {
		h := headings[i]
		if h == nil {
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.buffer.Len() > 0 {
					top.buffer.WriteString("\n")
				}
				top.buffer.WriteString(p.text)
			}
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			emit(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}

		var placeholderId string
		if h.level <= 1 {
			sectionCounter++
			placeholderId = placeholderName("placeholder_section_", sectionCounter)
		} else {
			subsectionCounter++
			placeholderId = placeholderName("placeholder_subsection_", subsectionCounter)
		}

		sec := types.Section{
			SectionTitle:  normalizeSectionTitle(p.text),
			PlaceholderId: placeholderId,
		}
		var stored *types.Section
		if len(stack) == 0 {
			roots = append(roots, sec)
			stored = &roots[len(roots)-1]
		} else {
			parent := stack[len(stack)-1].section
			parent.SubSections = append(parent.SubSections, sec)
			stored = &parent.SubSections[len(parent.SubSections)-1]
		}
		stack = append(stack, &treeFrame{section: stored, level: h.level})
	}

	for len(stack) > 0 {
		emit(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}

	if len(roots) == 0 && len(flat) == 0 {
		return degenerateHierarchy(paras)
	}

	return types.SectionHierarchy{Sections: roots}, flat
}

// degenerateHierarchy implements the spec §4.5.2 fallback for documents
// where no headings were detected and no content sections would result.
func degenerateHierarchy(paras []paragraphFeatures) (types.SectionHierarchy, []types.ContentSection) {
	var b strings.Builder
	for _, p := range paras {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.text)
	}
	text := strings.TrimSpace(b.String())

	section := types.Section{SectionTitle: "Document Content", PlaceholderId: "placeholder_document_content"}
	hierarchy := types.SectionHierarchy{Sections: []types.Section{section}}
	if text == "" {
		return hierarchy, nil
	}
	return hierarchy, []types.ContentSection{{
		PlaceholderId: "placeholder_document_content",
		SectionTitle:  "Document Content",
		SampleText:    text,
		WordCount:     len(wordRe.FindAllString(text, -1)),
	}}
}

func placeholderName(prefix string, n int) string {
	return prefix + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
