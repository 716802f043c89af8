//go:build !noebiten

package render

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	etext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is used for panels without a FontSize.
const DefaultFontSize = 14.0

// DefaultFontFamily is used for panels without a Font.
const DefaultFontFamily = "gomono"

// FontStyle represents font style variations.
type FontStyle int

const (
	// FontStyleRegular is the regular/normal font style.
	FontStyleRegular FontStyle = iota
	// FontStyleBold is the bold font style.
	FontStyleBold
	// FontStyleItalic is the italic font style.
	FontStyleItalic
)

// fontKey identifies one loaded face source.
type fontKey struct {
	family string
	style  FontStyle
}

// FontManager resolves a panel's Font reference to a face source.
// Family names are case-insensitive; an optional trailing "bold" or
// "italic" word selects the style. Unknown families fall back to
// DefaultFontFamily.
type FontManager struct {
	mu      sync.RWMutex
	sources map[fontKey]*etext.GoTextFaceSource
}

// NewFontManager creates a FontManager holding the embedded Go fonts.
func NewFontManager() *FontManager {
	fm := &FontManager{sources: make(map[fontKey]*etext.GoTextFaceSource)}

	embedded := []struct {
		family string
		style  FontStyle
		data   []byte
	}{
		{"gomono", FontStyleRegular, gomono.TTF},
		{"gomono", FontStyleBold, gomonobold.TTF},
		{"gomono", FontStyleItalic, gomonoitalic.TTF},
		{"gosans", FontStyleRegular, goregular.TTF},
		{"gosans", FontStyleBold, gobold.TTF},
		{"gosans", FontStyleItalic, goitalic.TTF},
	}
	for _, e := range embedded {
		// Embedded fonts always parse.
		if src, err := etext.NewGoTextFaceSource(bytes.NewReader(e.data)); err == nil {
			fm.sources[fontKey{e.family, e.style}] = src
		}
	}
	for _, alias := range []string{"monospace", "mono", "consolas", "courier new"} {
		fm.alias(alias, "gomono")
	}
	for _, alias := range []string{"go", "sans", "sans-serif", "segoe ui", "arial"} {
		fm.alias(alias, "gosans")
	}
	return fm
}

func (fm *FontManager) alias(name, family string) {
	for _, style := range []FontStyle{FontStyleRegular, FontStyleBold, FontStyleItalic} {
		if src, ok := fm.sources[fontKey{family, style}]; ok {
			fm.sources[fontKey{name, style}] = src
		}
	}
}

// LoadFontFile registers a TrueType or OpenType file under family.
func (fm *FontManager) LoadFontFile(family string, style FontStyle, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font file %s: %w", path, err)
	}
	src, err := etext.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse font data: %w", err)
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.sources[fontKey{strings.ToLower(family), style}] = src
	return nil
}

// Face returns a face for a Font reference at size points. A size of zero
// or less uses DefaultFontSize.
func (fm *FontManager) Face(ref string, size int) *etext.GoTextFace {
	fs := float64(size)
	if size <= 0 {
		fs = DefaultFontSize
	}
	return &etext.GoTextFace{Source: fm.Source(ref), Size: fs}
}

// Source resolves ref to a face source.
func (fm *FontManager) Source(ref string) *etext.GoTextFaceSource {
	family, style := splitFontRef(ref)

	fm.mu.RLock()
	defer fm.mu.RUnlock()
	if src, ok := fm.sources[fontKey{family, style}]; ok {
		return src
	}
	if src, ok := fm.sources[fontKey{family, FontStyleRegular}]; ok {
		return src
	}
	if src, ok := fm.sources[fontKey{DefaultFontFamily, style}]; ok {
		return src
	}
	return fm.sources[fontKey{DefaultFontFamily, FontStyleRegular}]
}

func splitFontRef(ref string) (string, FontStyle) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return DefaultFontFamily, FontStyleRegular
	}
	style := FontStyleRegular
	if i := strings.LastIndexByte(ref, ' '); i > 0 {
		switch ref[i+1:] {
		case "bold":
			style, ref = FontStyleBold, strings.TrimSpace(ref[:i])
		case "italic":
			style, ref = FontStyleItalic, strings.TrimSpace(ref[:i])
		}
	}
	return ref, style
}
