package docx

import "github.com/brillob/dtce/internal/types"

// styleInfo is one paragraph style resolved from word/styles.xml.
type styleInfo struct {
	ID          string
	DisplayName string
	Font        types.FontDefinition
}

// parseStyles reads every paragraph style in the package, keyed by styleId.
// order preserves the styleId sequence as it appears in word/styles.xml, so
// callers that need a deterministic traversal (theme color palette
// extraction) don't have to range over the map itself.
func parseStyles(pkg *ooxmlPackage) (styles map[string]styleInfo, order []string, err error) {
	out := make(map[string]styleInfo)
	if !pkg.has("word/styles.xml") {
		return out, nil, nil
	}
	root, err := pkg.readXML("word/styles.xml")
	if err != nil {
		return nil, nil, err
	}
	for _, style := range root.children("style") {
		styleType, hasType := style.attr("type")
		if hasType && styleType != "paragraph" {
			continue
		}
		id, _ := style.attr("styleId")
		if id == "" {
			continue
		}
		displayName := id
		if nameEl := style.find("name"); nameEl != nil {
			if val, ok := nameEl.attr("val"); ok && val != "" {
				displayName = val
			}
		}
		out[id] = styleInfo{
			ID:          id,
			DisplayName: displayName,
			Font:        fontFromRunProps(style.find("rPr")),
		}
		order = append(order, id)
	}
	return out, order, nil
}
