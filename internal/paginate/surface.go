package paginate

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrSurfaceInit reports that the text measurement surface could not be
// built. No pages are produced when this happens.
var ErrSurfaceInit = errors.New("paginate: text surface unavailable")

// Surface measures and draws single-line text runs. Coordinates and
// widths are in points; implementations translate points to device
// pixels themselves.
type Surface interface {
	// Width reports the rendered width of text at size points.
	Width(text string, size float64, bold bool) float64
	// Draw renders text with its baseline at (x, y) points from the
	// top-left corner of dst.
	Draw(dst draw.Image, text string, x, y, size float64, bold bool)
}

// FontConfig selects the typefaces backing a FontSurface. Nil slots fall
// back to the bundled Go fonts.
type FontConfig struct {
	Regular []byte // TTF or OTF data
	Bold    []byte
}

type faceKey struct {
	size float64
	bold bool
}

// FontSurface renders text with opentype faces. Measurement faces run at
// 72 DPI so one point equals one pixel; drawing faces run at the raster
// scale so glyphs stay sharp on the upscaled canvas. Instances are not
// safe for concurrent use, but each conversion builds its own.
type FontSurface struct {
	scale   float64
	measure map[faceKey]font.Face
	raster  map[faceKey]font.Face
}

// NewFontSurface builds faces for every size in sizes, in both regular
// and bold weights. Failures wrap ErrSurfaceInit.
func NewFontSurface(cfg FontConfig, sizes []float64, scale float64) (*FontSurface, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no face sizes requested", ErrSurfaceInit)
	}
	if scale <= 0 {
		scale = RasterScale
	}
	regularData := cfg.Regular
	if regularData == nil {
		regularData = goregular.TTF
	}
	boldData := cfg.Bold
	if boldData == nil {
		boldData = gobold.TTF
	}
	regular, err := opentype.Parse(regularData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse regular font: %v", ErrSurfaceInit, err)
	}
	bold, err := opentype.Parse(boldData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse bold font: %v", ErrSurfaceInit, err)
	}

	s := &FontSurface{
		scale:   scale,
		measure: make(map[faceKey]font.Face),
		raster:  make(map[faceKey]font.Face),
	}
	for _, size := range sizes {
		for _, weight := range []bool{false, true} {
			fnt := regular
			if weight {
				fnt = bold
			}
			key := faceKey{size: size, bold: weight}
			mf, err := opentype.NewFace(fnt, &opentype.FaceOptions{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: face %gpt: %v", ErrSurfaceInit, size, err)
			}
			rf, err := opentype.NewFace(fnt, &opentype.FaceOptions{
				Size:    size,
				DPI:     72 * scale,
				Hinting: font.HintingFull,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: raster face %gpt: %v", ErrSurfaceInit, size, err)
			}
			s.measure[key] = mf
			s.raster[key] = rf
		}
	}
	return s, nil
}

// Width implements Surface using the 72 DPI measurement faces.
func (s *FontSurface) Width(text string, size float64, bold bool) float64 {
	return float64(font.MeasureString(s.face(s.measure, size, bold), text)) / 64
}

// Draw implements Surface. The point coordinates are scaled up to the
// raster canvas.
func (s *FontSurface) Draw(dst draw.Image, text string, x, y, size float64, bold bool) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: s.face(s.raster, size, bold),
		Dot: fixed.Point26_6{
			X: toFixed(x * s.scale),
			Y: toFixed(y * s.scale),
		},
	}
	d.DrawString(text)
}

// Close releases the cached faces.
func (s *FontSurface) Close() error {
	var err error
	for _, f := range s.measure {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	for _, f := range s.raster {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// face returns the registered face for size and weight, or the nearest
// registered size of the same weight.
func (s *FontSurface) face(faces map[faceKey]font.Face, size float64, bold bool) font.Face {
	if f, ok := faces[faceKey{size: size, bold: bold}]; ok {
		return f
	}
	var (
		best font.Face
		diff = math.MaxFloat64
	)
	for key, f := range faces {
		if key.bold != bold {
			continue
		}
		if d := math.Abs(key.size - size); d < diff {
			diff, best = d, f
		}
	}
	return best
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
