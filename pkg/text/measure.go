// Package text measures and breaks label text for box sizing.
//
// Two measurers are provided. FaceMeasurer uses real glyph advances from
// OpenType faces (the Go fonts by default, or a font file). CellMeasurer
// counts terminal cells and is fully deterministic, which makes it the
// measurer of choice for tests.
package text

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered width of a single line of text in pixels.
type Measurer interface {
	Width(s string, size float64, weight int) float64
}

// Font weights used to pick a face.
const (
	WeightRegular = 400
	WeightMedium  = 500
	WeightBold    = 600
)

type faceKey struct {
	size   float64
	weight int
}

// FaceMeasurer measures text with OpenType faces at 72 DPI, so one point
// is one pixel. Faces are created lazily per (size, weight) and reused.
// It is safe for concurrent use.
type FaceMeasurer struct {
	regular, medium, bold *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFaceMeasurer returns a measurer backed by the Go font family.
func NewFaceMeasurer() (*FaceMeasurer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular face: %w", err)
	}
	medium, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse medium face: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold face: %w", err)
	}
	return &FaceMeasurer{
		regular: regular,
		medium:  medium,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// LoadFaceMeasurer returns a measurer that uses a single TrueType or
// OpenType font file for every weight.
func LoadFaceMeasurer(path string) (*FaceMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &FaceMeasurer{
		regular: f,
		medium:  f,
		bold:    f,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// Width returns the advance width of s in pixels. If a face cannot be
// built the cell estimate is returned instead.
func (m *FaceMeasurer) Width(s string, size float64, weight int) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(size, weight)
	if err != nil {
		return CellMeasurer{}.Width(s, size, weight)
	}
	return float64(font.MeasureString(face, s)) / 64
}

// face must be called with m.mu held.
func (m *FaceMeasurer) face(size float64, weight int) (font.Face, error) {
	key := faceKey{size: size, weight: weight}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	src := m.regular
	switch {
	case weight >= WeightBold:
		src = m.bold
	case weight >= WeightMedium:
		src = m.medium
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// Close releases all cached faces.
func (m *FaceMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, f := range m.faces {
		_ = f.Close()
		delete(m.faces, k)
	}
	return nil
}
