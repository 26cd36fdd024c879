package analysis

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// logoAreaThreshold is the spec §4.7 area cutoff (px^2) below which an
// asset is classified as a logo unconditionally, overriding the
// diversity/transparency/edge-ratio test below.
const logoAreaThreshold = 40000

// presignedURLTTL is the validity window attached to a refreshed LogoAsset
// URL after classification (spec §4.4.3 step 4).
const presignedURLTTL = 12 * time.Hour

// classifyLogo downloads key, samples it on a uniform grid, and returns the
// refined AssetType plus a fresh pre-signed URL valid for 12 hours.
func classifyLogo(ctx context.Context, store interfaces.ObjectStore, key string) (types.AssetType, string, error) {
	r, err := store.Download(ctx, key)
	if err != nil {
		return types.AssetTypeImage, "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return types.AssetTypeImage, "", err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return types.AssetTypeImage, "", nil // undecodable image: leave classification unchanged
	}

	assetType := classify(img)

	url, err := store.PresignedURL(ctx, key, presignedURLTTL)
	if err != nil {
		return assetType, "", err
	}
	return assetType, url, nil
}

func classify(img image.Image) types.AssetType {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return types.AssetTypeImage
	}

	stepX := max(1, width/128)
	stepY := max(1, height/128)

	uniqueColors := make(map[uint32]struct{})
	edgeColors := make(map[uint32]int)
	sampleCount := 0
	transparentCount := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, a := img.At(x, y).RGBA()
			packed := packRGBA8(r, g, b, a)
			uniqueColors[packed] = struct{}{}
			sampleCount++

			alpha8 := a >> 8
			if alpha8 < 80 {
				transparentCount++
			}
			isEdge := x < bounds.Min.X+stepX || x >= bounds.Max.X-stepX ||
				y < bounds.Min.Y+stepY || y >= bounds.Max.Y-stepY
			if isEdge {
				edgeColors[packed]++
			}
		}
	}

	if sampleCount == 0 {
		return types.AssetTypeImage
	}

	colorDiversity := float64(len(uniqueColors)) / float64(sampleCount)
	transparencyRatio := float64(transparentCount) / float64(sampleCount)
	dominantEdgeRatio := 0.0
	edgeTotal := 0
	maxEdge := 0
	for _, c := range edgeColors {
		edgeTotal += c
		if c > maxEdge {
			maxEdge = c
		}
	}
	if edgeTotal > 0 {
		dominantEdgeRatio = float64(maxEdge) / float64(edgeTotal)
	}

	isLogo := colorDiversity < 0.18 ||
		(transparencyRatio > 0.25 && colorDiversity < 0.35) ||
		(dominantEdgeRatio > 0.4 && colorDiversity < 0.4)

	area := width * height
	if area < logoAreaThreshold {
		isLogo = true
	}

	if isLogo {
		return types.AssetTypeLogo
	}
	return types.AssetTypeImage
}

func packRGBA8(r, g, b, a uint32) uint32 {
	return (r>>8)<<24 | (g>>8)<<16 | (b>>8)<<8 | (a >> 8)
}
