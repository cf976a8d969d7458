// Package lcdimage draws the contents of a character LCD as an image, so a
// browser can show what the glass shows.
package lcdimage

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Character cell geometry, in unscaled pixels
const (
	CellWidth  = 6
	CellHeight = 10
	Margin     = 4
	// baseline offset of the font inside a cell
	ascent = 8
)

var (
	Backlit = color.RGBA{0x9c, 0xd3, 0x4a, 0xff}
	Unlit   = color.RGBA{0x3a, 0x4a, 0x2a, 0xff}
	Ink     = color.RGBA{0x10, 0x20, 0x30, 0xff}
)

// Canvas is an in-memory drivers.Displayer
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (c *Canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel ignores pixels off the canvas
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.img.SetRGBA(int(x), int(y), col)
}

func (c *Canvas) Display() error {
	return nil
}

func (c *Canvas) Fill(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

var _ drivers.Displayer = (*Canvas)(nil)

// Size returns the unscaled image size for rows lines of cols characters
func Size(cols, rows int) (width, height int) {
	return cols*CellWidth + 2*Margin, rows*CellHeight + 2*Margin
}

// Render draws lines, one character per cell, and scales the result up by
// scale (at least 1).
func Render(lines []string, backlight bool, scale int) *image.RGBA {
	cols := 0
	for _, l := range lines {
		if len(l) > cols {
			cols = len(l)
		}
	}
	w, h := Size(cols, len(lines))

	canvas := NewCanvas(w, h)
	if backlight {
		canvas.Fill(Backlit)
	} else {
		canvas.Fill(Unlit)
	}

	for row, l := range lines {
		y := int16(Margin + row*CellHeight + ascent)
		for col := 0; col < len(l); col++ {
			if l[col] == ' ' {
				continue
			}
			x := int16(Margin + col*CellWidth)
			tinyfont.WriteLine(canvas, &proggy.TinySZ8pt7b, x, y, l[col:col+1], Ink)
		}
	}
	canvas.Display()

	if scale <= 1 {
		return canvas.Image()
	}
	out := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), canvas.Image(), canvas.Image().Bounds(), draw.Src, nil)
	return out
}
