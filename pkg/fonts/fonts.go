// Package fonts provides the label font and text measurement.
//
// Labels use Go Regular from golang.org/x/image, which ships inside the
// module so measurements agree across machines. SVG output embeds the same
// font, so widths computed here match what a browser draws.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for renderers that ignore @font-face.
const FallbackFontFamily = `'Go', system-ui, -apple-system, 'Segoe UI', Helvetica, Arial, sans-serif`

// RegularTTF returns the TrueType data of the label font.
func RegularTTF() []byte {
	return goregular.TTF
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularBase64 returns the label font as a base64 string for data URLs.
func RegularBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

var (
	parseOnce sync.Once
	parsed    *opentype.Font
	parseErr  error

	// Faces keep scratch buffers, so measuring is serialized.
	mu    sync.Mutex
	faces = map[float64]font.Face{}
)

// Face returns the shared label face at size pixels. Faces are cached per
// size and must not be used concurrently with Measure; see NewFace.
func Face(size float64) (font.Face, error) {
	mu.Lock()
	defer mu.Unlock()
	return faceLocked(size)
}

func faceLocked(size float64) (font.Face, error) {
	if f, ok := faces[size]; ok {
		return f, nil
	}
	f, err := NewFace(size)
	if err != nil {
		return nil, err
	}
	faces[size] = f
	return f, nil
}

// NewFace returns a new, uncached face at size pixels. Use it when the face
// is owned by a single goroutine, such as a raster surface.
func NewFace(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measure returns the advance width of text at size pixels. If the font
// cannot be loaded it falls back to the fixed-width basic face scaled to
// size.
func Measure(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	face, err := faceLocked(size)
	if err != nil {
		adv := font.MeasureString(basicfont.Face7x13, text)
		return float64(adv) / 64 * size / 13
	}
	return float64(font.MeasureString(face, text)) / 64
}

// Measurer measures text widths in pixels.
type Measurer interface {
	MeasureText(text string, size float64) float64
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(text string, size float64) float64

// MeasureText calls fn.
func (fn MeasurerFunc) MeasureText(text string, size float64) float64 { return fn(text, size) }

// Default measures with the embedded font.
var Default Measurer = MeasurerFunc(Measure)
