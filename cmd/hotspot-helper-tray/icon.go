package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	colorOn  = color.RGBA{R: 0x2e, G: 0xa0, B: 0x43, A: 0xff}
	colorOff = color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
)

// renderIcon draws a filled circle with three arcs cut out above it, the
// usual wireless glyph, in fill. Returns PNG bytes for systray.SetIcon.
func renderIcon(fill color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	cx, cy := float64(iconSize)/2, float64(iconSize)*0.8

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			d2 := dx*dx + dy*dy
			// only the upper quarter-circle wedge
			inWedge := dy < 0 && dx*dx < dy*dy
			switch {
			case d2 <= 3*3:
				img.SetRGBA(x, y, fill)
			case inWedge && ring(d2, 7, 10):
				img.SetRGBA(x, y, fill)
			case inWedge && ring(d2, 13, 16):
				img.SetRGBA(x, y, fill)
			case inWedge && ring(d2, 19, 22):
				img.SetRGBA(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func ring(d2, inner, outer float64) bool {
	return d2 >= inner*inner && d2 <= outer*outer
}

// Icons are rendered once at startup.
var (
	iconOn  = renderIcon(colorOn)
	iconOff = renderIcon(colorOff)
)
