package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"go.viam.com/test"
)

func TestDrawIcon(t *testing.T) {
	for _, connected := range []bool{true, false} {
		ico, err := drawIcon(connected)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(ico), test.ShouldBeGreaterThan, 22)

		test.That(t, binary.LittleEndian.Uint16(ico[2:4]), test.ShouldEqual, uint16(1)) // icon type
		test.That(t, binary.LittleEndian.Uint16(ico[4:6]), test.ShouldEqual, uint16(1)) // image count
		test.That(t, ico[6], test.ShouldEqual, byte(iconSize))
		size := binary.LittleEndian.Uint32(ico[14:18])
		offset := binary.LittleEndian.Uint32(ico[18:22])
		test.That(t, offset, test.ShouldEqual, uint32(22))
		test.That(t, int(offset+size), test.ShouldEqual, len(ico))

		img, err := png.Decode(bytes.NewReader(ico[offset:]))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Bounds().Dx(), test.ShouldEqual, iconSize)
	}
}

func TestIconReflectsConnection(t *testing.T) {
	on, err := drawIcon(true)
	test.That(t, err, test.ShouldBeNil)
	off, err := drawIcon(false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bytes.Equal(on, off), test.ShouldBeFalse)
}
