// Package fonts provides the faces used on rendered boards.
//
// Faces keep glyph buffers and are not safe for concurrent use, so every call
// returns a new face over a shared parsed font.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	captionSize = 18
	headerSize  = 22
)

type lazyFont struct {
	once   sync.Once
	ttf    []byte
	parsed *opentype.Font
	err    error
}

func (l *lazyFont) face(size float64) (font.Face, error) {
	l.once.Do(func() {
		l.parsed, l.err = opentype.Parse(l.ttf)
	})
	if l.err != nil {
		return nil, fmt.Errorf("parse font: %w", l.err)
	}
	face, err := opentype.NewFace(l.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

var (
	regular = &lazyFont{ttf: goregular.TTF}
	bold    = &lazyFont{ttf: gobold.TTF}
)

// CaptionFace is the regular face for coordinates and captions.
func CaptionFace() (font.Face, error) { return regular.face(captionSize) }

// HeaderFace is the bold face for the title panel.
func HeaderFace() (font.Face, error) { return bold.face(headerSize) }
