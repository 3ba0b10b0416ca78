package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// maxCoverPixels bounds cover decoding so a crafted header cannot force
// a huge allocation.
const maxCoverPixels = 100 * 1000 * 1000

// decodeCover parses a cover image. Transparency is flattened onto a
// white background because the page embeds the cover as JPEG, which
// has no alpha channel.
func decodeCover(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read cover header: %w", err)
	}
	if pixels := uint64(cfg.Width) * uint64(cfg.Height); pixels > maxCoverPixels {
		return nil, fmt.Errorf("cover too large to decode: %dx%d (%d pixels)", cfg.Width, cfg.Height, pixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	if hasAlpha(img) {
		bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		img = imaging.OverlayCenter(bg, img, 1.0)
	}
	return img, nil
}

func hasAlpha(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < 0xFFFF {
				return true
			}
		}
	}
	return false
}
