package docx

import (
	"bytes"
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

const emuPerInch = 914400

// extractImages uploads every media part to the object store and returns
// the LogoAsset list of spec §4.5.3. Bounding boxes come from the first
// inline <wp:extent> referencing the part's relationship id, when present.
func extractImages(ctx context.Context, store interfaces.ObjectStore, pkg *ooxmlPackage, body *node, jobID string) ([]types.LogoAsset, error) {
	rels, err := pkg.documentRels()
	if err != nil {
		return nil, err
	}
	extents := extentsByTarget(body, rels)

	media := pkg.mediaParts()
	assets := make([]types.LogoAsset, 0, len(media))
	for i, partName := range media {
		n := i + 1
		data, err := pkg.readBytes(partName)
		if err != nil {
			return nil, err
		}
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(partName)), ".")
		if ext == "" {
			ext = "png"
		}
		assetID := "asset_" + jobID + "_" + strconv.Itoa(n)
		key := "images/" + jobID + "/" + assetID + "." + ext

		if err := store.Upload(ctx, key, bytes.NewReader(data), contentTypeFor(ext)); err != nil {
			return nil, err
		}

		box := types.BoundingBox{Width: 100, Height: 100}
		if e, ok := extents[partName]; ok {
			box = e
		}
		assets = append(assets, types.LogoAsset{
			AssetId:     assetID,
			AssetType:   types.AssetTypeImage,
			BoundingBox: box,
			StorageKey:  key,
		})
	}
	return assets, nil
}

// extentsByTarget walks every inline drawing, resolving its r:embed
// relationship id to a target part name and recording pixel dimensions
// derived from wp:extent (EMU -> px at 96 DPI).
func extentsByTarget(body *node, rels map[string]string) map[string]types.BoundingBox {
	out := make(map[string]types.BoundingBox)
	if body == nil {
		return out
	}
	for _, drawing := range body.findAll("drawing") {
		inline := drawing.find("inline")
		if inline == nil {
			inline = drawing.find("anchor")
		}
		if inline == nil {
			continue
		}
		extent := inline.find("extent")
		blip := inline.find("blip")
		if extent == nil || blip == nil {
			continue
		}
		embed, ok := blip.attr("embed")
		if !ok {
			continue
		}
		target, ok := rels[embed]
		if !ok {
			continue
		}
		if _, seen := out[target]; seen {
			continue
		}
		cx, _ := twipsAttr(extent, "cx")
		cy, _ := twipsAttr(extent, "cy")
		out[target] = types.BoundingBox{
			Width:  cx / emuPerInch * 96,
			Height: cy / emuPerInch * 96,
		}
	}
	return out
}

func contentTypeFor(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
