//go:build tinygo && baremetal

package hal

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

const (
	oledWidth   = 128
	oledHeight  = 64
	oledAddress = 0x3C
)

// oledFramebuffer keeps an RGB565 back buffer for the shared renderers and
// thresholds it onto the monochrome SSD1306 on Present.
type oledFramebuffer struct {
	dev    *ssd1306.Device
	stride int
	buf    []byte
}

func newOLEDFramebuffer(bus *machine.I2C) *oledFramebuffer {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Width:    oledWidth,
		Height:   oledHeight,
		Address:  oledAddress,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearDisplay()
	return &oledFramebuffer{
		dev:    &dev,
		stride: oledWidth * 2,
		buf:    make([]byte, oledWidth*2*oledHeight),
	}
}

func (f *oledFramebuffer) Width() int          { return oledWidth }
func (f *oledFramebuffer) Height() int         { return oledHeight }
func (f *oledFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *oledFramebuffer) StrideBytes() int    { return f.stride }
func (f *oledFramebuffer) Buffer() []byte      { return f.buf }

func (f *oledFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *oledFramebuffer) Present() error {
	on := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	off := color.RGBA{A: 0xff}
	for y := 0; y < oledHeight; y++ {
		row := y * f.stride
		for x := 0; x < oledWidth; x++ {
			p := uint16(f.buf[row+x*2]) | uint16(f.buf[row+x*2+1])<<8
			c := off
			if lit565(p) {
				c = on
			}
			f.dev.SetPixel(int16(x), int16(y), c)
		}
	}
	return f.dev.Display()
}
