package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

const (
	defaultLogoWidthPx  = 180
	defaultLogoHeightPx = 120
)

// renderLogos implements spec §4.8 step 3: resolve bytes for each logo
// (overrides, else storage), detect format by magic bytes, and emit a
// centered paragraph with an inline Drawing for each one successfully
// resolved.
func renderLogos(ctx context.Context, store interfaces.ObjectStore, b *builder, logos []types.LogoAsset, opts Options) (string, error) {
	overrides := lowerKeyBytes(opts.LogoOverrides)
	var buf bytes.Buffer

	for _, logo := range sortedByAssetID(logos) {
		data, ok := resolveLogoBytes(ctx, store, logo, overrides, opts)
		if !ok {
			continue
		}
		ext, contentType := detectImageFormat(data)
		relID := b.addMedia(ext, contentType, data)

		width, height := logo.BoundingBox.Width, logo.BoundingBox.Height
		if width == 0 {
			width = defaultLogoWidthPx
		}
		if height == 0 {
			height = defaultLogoHeightPx
		}
		buf.WriteString(drawingParagraphXML(relID, logo.AssetId, width, height))
	}
	return buf.String(), nil
}

func resolveLogoBytes(ctx context.Context, store interfaces.ObjectStore, logo types.LogoAsset, overrides map[string][]byte, opts Options) ([]byte, bool) {
	if data, ok := overrides[strings.ToLower(logo.AssetId)]; ok {
		return data, true
	}
	if logo.StorageKey != "" && opts.IncludeTemplateLogosFromStorage {
		r, err := store.Download(ctx, logo.StorageKey)
		if err != nil {
			return nil, false
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	return nil, false
}

func lowerKeyBytes(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// detectImageFormat inspects magic bytes per spec §4.8 step 3, defaulting
// to PNG when the signature is unrecognized.
func detectImageFormat(data []byte) (ext, contentType string) {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "png", "image/png"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "jpg", "image/jpeg"
	case len(data) >= 3 && data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46:
		return "gif", "image/gif"
	case len(data) >= 2 && data[0] == 0x42 && data[1] == 0x4D:
		return "bmp", "image/bmp"
	default:
		return "png", "image/png"
	}
}

func drawingParagraphXML(relID, name string, widthPx, heightPx float64) string {
	cx := strconv.Itoa(int(widthPx * emuPerPixel))
	cy := strconv.Itoa(int(heightPx * emuPerPixel))
	return fmt.Sprintf(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
		`<wp:inline><wp:extent cx="%s" cy="%s"/>`+
		`<wp:docPr id="1" name="%s"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:blipFill><a:blip r:embed="%s"/></pic:blipFill>`+
		`</pic:pic></a:graphicData></a:graphic>`+
		`</wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, escapeXML(name), relID)
}
