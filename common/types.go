// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxTextureDimension is the largest texture edge guaranteed by the default WebGPU limits.
// Decoded images larger than this are scaled down to fit.
const MaxTextureDimension = 8192

// ErrEmptyTexture is returned when an ImportedTexture has neither data nor a path.
var ErrEmptyTexture = errors.New("texture has neither data nor path")

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// ImportedTexture represents an image to be uploaded as a texture.
// Either Data holds encoded image bytes, or Path points at an image file on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse").
	Name string

	// Path is the file path for external textures (empty for in-memory data).
	Path string

	// Data contains encoded image bytes (PNG, JPEG, BMP, TIFF or WebP).
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either the Data bytes or loads from Path on disk.
// Images with an edge longer than MaxTextureDimension are scaled down, keeping the aspect ratio.
//
// Returns:
//   - TextureStagingData: RGBA pixels (4 bytes per pixel, row-major order) and dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return TextureStagingData{}, ErrEmptyTexture
	}

	src := img.Bounds()
	width, height := fitWithin(src.Dx(), src.Dy(), MaxTextureDimension)
	dst := image.Rect(0, 0, width, height)
	rgba := image.NewRGBA(dst)
	if width == src.Dx() && height == src.Dy() {
		draw.Draw(rgba, dst, img, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, dst, img, src, draw.Src, nil)
	}

	t.Width = width
	t.Height = height

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}

// fitWithin scales (w, h) down so neither edge exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// Checkerboard generates a size×size RGBA texture of alternating cells.
// Used when no diffuse texture is configured.
//
// Parameters:
//   - size: edge length in pixels
//   - cell: edge length of one checker cell in pixels
//   - a, b: the two RGBA colors
//
// Returns:
//   - TextureStagingData: the generated pixels
func Checkerboard(size, cell int, a, b [4]uint8) TextureStagingData {
	if cell <= 0 {
		cell = 1
	}
	pix := make([]byte, size*size*4)
	for y := range size {
		for x := range size {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			copy(pix[(y*size+x)*4:], c[:])
		}
	}
	return TextureStagingData{Pixels: pix, Width: uint32(size), Height: uint32(size)}
}
