package googledoc

import (
	"bytes"
	"context"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brillob/dtce/internal/fetch"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// extractImages uploads every <img> src (including data: URIs) to the
// object store under images/{jobId}/google_{n}.png (spec §4.4.2).
func extractImages(ctx context.Context, store interfaces.ObjectStore, doc *goquery.Document, jobID string) ([]types.LogoAsset, error) {
	var assets []types.LogoAsset
	n := 0
	var firstErr error

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if firstErr != nil {
			return
		}
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return
		}
		data, err := decodeImageSrc(ctx, src)
		if err != nil {
			return // skip unreachable/unsupported images rather than failing the whole job
		}
		n++
		key := "images/" + jobID + "/google_" + strconv.Itoa(n) + ".png"
		if err := store.Upload(ctx, key, bytes.NewReader(data), "image/png"); err != nil {
			firstErr = err
			return
		}
		assets = append(assets, types.LogoAsset{
			AssetId:     "asset_" + jobID + "_google_" + strconv.Itoa(n),
			AssetType:   types.AssetTypeImage,
			BoundingBox: types.BoundingBox{Width: 100, Height: 100},
			StorageKey:  key,
		})
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return assets, nil
}

func decodeImageSrc(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 {
			return nil, errEmptyDataURI
		}
		meta, payload := src[:comma], src[comma+1:]
		if strings.Contains(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		return []byte(payload), nil
	}
	return fetch.Bytes(ctx, src)
}

var errEmptyDataURI = dataURIError("malformed data: URI")

type dataURIError string

func (e dataURIError) Error() string { return string(e) }
