package tray

import (
	"bytes"
	"encoding/binary"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

const iconSize = 32

// drawIcon renders a small gamepad glyph. Connected pads get a green
// status dot, otherwise it is grey.
func drawIcon(connected bool) ([]byte, error) {
	dc := gg.NewContext(iconSize, iconSize)

	dc.SetRGB255(45, 52, 64)
	dc.DrawRoundedRectangle(2, 8, 28, 16, 7)
	dc.Fill()

	// d-pad
	dc.SetRGB255(220, 224, 232)
	dc.DrawRectangle(7, 14, 7, 3)
	dc.DrawRectangle(9, 12, 3, 7)
	dc.Fill()

	// face buttons
	dc.DrawCircle(22, 13, 1.6)
	dc.DrawCircle(25, 16, 1.6)
	dc.DrawCircle(19, 16, 1.6)
	dc.DrawCircle(22, 19, 1.6)
	dc.Fill()

	if connected {
		dc.SetRGB255(80, 200, 120)
	} else {
		dc.SetRGB255(140, 140, 140)
	}
	dc.DrawCircle(16, 5, 3)
	dc.Fill()

	var png bytes.Buffer
	if err := dc.EncodePNG(&png); err != nil {
		return nil, errors.Wrap(err, "encode tray icon")
	}
	return wrapICO(png.Bytes(), iconSize), nil
}

// wrapICO puts one PNG image into an ICO container, which Windows needs
// for tray icons. Other platforms accept the same bytes.
func wrapICO(png []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(len(png)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(png)
	return buf.Bytes()
}
