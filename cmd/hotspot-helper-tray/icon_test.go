package main

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestRenderIcon(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want color.RGBA
	}{
		{"on", iconOn, colorOn},
		{"off", iconOff, colorOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := png.Decode(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Failed to decode icon: %v", err)
			}
			if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
				t.Fatalf("Expected %dx%d, got %v", iconSize, iconSize, b)
			}

			// center of the dot
			r, g, b, a := img.At(iconSize/2, iconSize*4/5).RGBA()
			if uint8(r>>8) != tt.want.R || uint8(g>>8) != tt.want.G || uint8(b>>8) != tt.want.B || uint8(a>>8) != 0xff {
				t.Errorf("Expected %v at the dot, got (%d,%d,%d,%d)", tt.want, r>>8, g>>8, b>>8, a>>8)
			}

			// corners stay transparent
			if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
				t.Errorf("Expected a transparent corner, got alpha %d", a)
			}
		})
	}
}
