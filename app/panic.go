package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"

	"multitool/hal"
	"multitool/sparkos/kernel"
)

// TomThumb glyph cell.
const (
	panicGlyphW    = 4
	panicLineH     = 7
	panicBaselineY = 5
)

func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)

		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}

		disp := h.Display()
		if disp == nil {
			select {}
		}
		fb := disp.Framebuffer()
		if fb == nil {
			select {}
		}

		// Red band on the header row, black text on white below.
		fb.ClearRGB(255, 255, 255)
		d := panicDisplay{fb: fb}
		for x := 0; x < fb.Width(); x++ {
			for y := 0; y < panicLineH; y++ {
				d.SetPixel(int16(x), int16(y), color.RGBA{R: 200, A: 255})
			}
		}

		cols := fb.Width() / panicGlyphW
		if cols <= 0 {
			cols = 1
		}
		fg := color.RGBA{A: 255}
		y := 0
		for i, line := range lines {
			c := fg
			if i == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			for len(line) > 0 {
				if y+panicLineH > fb.Height() {
					_ = fb.Present()
					select {}
				}
				chunk, rest := takeRunes(line, cols)
				tinyfont.WriteLine(d, &tinyfont.TomThumb, 0, int16(y+panicBaselineY), chunk, c)
				y += panicLineH
				line = strings.TrimLeft(rest, " ")
			}
		}

		_ = fb.Present()
		select {}
	})
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"PANIC",
		fmt.Sprintf("task: %d tick: %d", info.TaskID, info.Tick),
		fmt.Sprintf("panic: %v", info.Value),
	}
	frames := info.Frames()
	if len(frames) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	return append(lines, frames...)
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if buf == nil || ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	pixel := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d panicDisplay) Display() error { return nil }

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
