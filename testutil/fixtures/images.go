// Package fixtures holds generated test payloads.
package fixtures

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// PNGBytes returns a w x h PNG with a diagonal gradient.
func PNGBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGBase64 returns PNGBytes base64 encoded.
func PNGBase64(w, h int) string {
	return base64.StdEncoding.EncodeToString(PNGBytes(w, h))
}

// PNGDataURI returns a data:image/png URI, the form providers hand back.
func PNGDataURI(w, h int) string {
	return "data:image/png;base64," + PNGBase64(w, h)
}
