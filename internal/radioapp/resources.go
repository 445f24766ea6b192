package radioapp

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"fyne.io/fyne/v2"
)

// AppIcon is the window, taskbar and tray icon: a rounded tile in the flag's
// blue and red with a gold sun. It is drawn once at start-up.
var AppIcon fyne.Resource

var (
	iconBlue = color.NRGBA{R: 0x00, G: 0x38, B: 0xa8, A: 0xff}
	iconRed  = color.NRGBA{R: 0xce, G: 0x11, B: 0x26, A: 0xff}
	iconSun  = color.NRGBA{R: 0xfc, G: 0xd1, B: 0x16, A: 0xff}
)

func init() {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon(64)); err != nil {
		logger.Warnf("encode app icon: %v", err)
		return
	}
	AppIcon = fyne.NewStaticResource("phradio.png", buf.Bytes())
}

func drawIcon(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 6
	sunR := float64(size) / 5
	cx, cy := float64(size)/2, float64(size)/2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !insideRounded(fx, fy, float64(size), r) {
				continue
			}
			c := iconBlue
			if y >= size/2 {
				c = iconRed
			}
			if dx, dy := fx-cx, fy-cy; dx*dx+dy*dy <= sunR*sunR {
				c = iconSun
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// insideRounded reports whether (x, y) lies in a size×size square with
// corners of radius r.
func insideRounded(x, y, size, r float64) bool {
	nx := min(max(x, r), size-r)
	ny := min(max(y, r), size-r)
	dx, dy := x-nx, y-ny
	return dx*dx+dy*dy <= r*r
}
