package rftools

import (
	"fmt"
	"image/color"

	"multitool/hal"
	"multitool/sparkos/rf/analyzer"
	"multitool/sparkos/rf/pulse"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// The OLED is monochrome: anything bright lights a dot.
var (
	colorBG = color.RGBA{A: 0xff}
	colorFG = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	lineHeight = 7
	// glyph baseline below the top of a text row
	fontBaseline = 5
	// waveform band under the title bar
	waveTop    = 9
	waveHeight = 14
	// samples shown in the waveform band
	waveSamples = 48
)

var _ drivers.Displayer = (*fbDisplay)(nil)

type fbDisplay struct {
	fb hal.Framebuffer
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if buf == nil || ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	pixel := rgb565From888(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) fillRect(x, y, w, h int, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}
	x0 := clampInt(x, 0, d.fb.Width())
	y0 := clampInt(y, 0, d.fb.Height())
	x1 := clampInt(x+w, 0, d.fb.Width())
	y1 := clampInt(y+h, 0, d.fb.Height())

	pixel := rgb565From888(c.R, c.G, c.B)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			off := py*stride + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = byte(pixel)
			buf[off+1] = byte(pixel >> 8)
		}
	}
}

func (d *fbDisplay) text(x, row int, s string, c color.RGBA) {
	tinyfont.WriteLine(d, &tinyfont.TomThumb, int16(x), int16(row*lineHeight+fontBaseline), s, c)
}

// inverted draws s as a highlighted row.
func (d *fbDisplay) inverted(row int, s string) {
	w, _ := d.Size()
	d.fillRect(0, row*lineHeight, int(w), lineHeight, colorFG)
	d.text(1, row, s, colorBG)
}

// canvas lets the waveform analyzer paint in the foreground colour.
type canvas struct{ d *fbDisplay }

func (c canvas) FillRect(x, y, w, h int) { c.d.fillRect(x, y, w, h, colorFG) }

func (d *fbDisplay) waveform(samples []pulse.Sample) {
	if len(samples) > waveSamples {
		samples = samples[len(samples)-waveSamples:]
	}
	w, _ := d.Size()
	analyzer.Draw(canvas{d}, samples, analyzer.Rect{X: 0, Y: waveTop, W: int(w), H: waveHeight})
}

// bar draws a framed progress bar filled to done/total.
func (d *fbDisplay) bar(row int, done, total uint64) {
	w, _ := d.Size()
	y := row*lineHeight + 1
	width := int(w) - 2
	d.fillRect(1, y, width, 1, colorFG)
	d.fillRect(1, y+4, width, 1, colorFG)
	d.fillRect(1, y, 1, 5, colorFG)
	d.fillRect(width, y, 1, 5, colorFG)
	if total == 0 {
		return
	}
	fill := int(done * uint64(width-2) / total)
	d.fillRect(2, y+1, fill, 3, colorFG)
}

func (t *Task) render() {
	if t.d == nil || t.d.fb == nil {
		return
	}
	t.d.fb.ClearRGB(0, 0, 0)

	switch t.page {
	case pageMenu:
		t.renderMenu()
	case pageCapture:
		t.renderCapture()
	case pageReplay:
		t.renderReplay()
	case pageBruteforce:
		t.renderBruteforce()
	case pageRollJam:
		t.renderRollJam()
	case pageJammer:
		t.renderJammer()
	}

	if t.msg != "" {
		_, h := t.d.Size()
		t.d.text(1, int(h)/lineHeight-1, t.msg, colorFG)
	}
	_ = t.d.Display()
}

func (t *Task) renderMenu() {
	t.d.inverted(0, "multitool "+t.cfg.Version)
	for i, p := range menuPages {
		row := i + 1
		if i == t.menuSel {
			t.d.inverted(row, "> "+p.String())
			continue
		}
		t.d.text(5, row, p.String(), colorFG)
	}
}

func (t *Task) renderCapture() {
	state := "idle"
	if t.capturing {
		state = "REC"
	}
	t.d.inverted(0, "Capture "+state)
	t.d.waveform(t.samples)
	t.d.text(1, 4, fmt.Sprintf("samples %d  drop %d", len(t.samples), t.dropped), colorFG)
	t.d.text(1, 5, fmt.Sprintf("codes %d", t.codeCount), colorFG)
	t.d.text(1, 6, "OK rec/stop  > save", colorFG)
}

func (t *Task) renderReplay() {
	t.d.inverted(0, "Replay")
	if len(t.files) == 0 {
		t.d.text(1, 2, "no captures", colorFG)
		return
	}
	first := 0
	if t.fileSel >= 6 {
		first = t.fileSel - 5
	}
	for i := first; i < len(t.files) && i < first+6; i++ {
		row := i - first + 1
		if i == t.fileSel {
			t.d.inverted(row, "> "+t.files[i])
			continue
		}
		t.d.text(5, row, t.files[i], colorFG)
	}
}

func (t *Task) renderBruteforce() {
	b := &t.brute
	p := b.protocol()
	t.d.inverted(0, fmt.Sprintf("Brute %s %d-bit", p.Name, b.bitsValue()))

	switch b.stage {
	case bruteSelect:
		t.d.text(1, 2, "^v protocol  <> bits", colorFG)
		t.d.text(1, 3, fmt.Sprintf("%d codes", uint64(1)<<uint(b.bitsValue())), colorFG)
		t.d.text(1, 5, "OK continue", colorFG)
	case bruteConfirm:
		t.d.text(1, 2, fmt.Sprintf("%d codes x3", uint64(1)<<uint(b.bitsValue())), colorFG)
		t.d.text(1, 3, "about "+formatDuration(b.estimate), colorFG)
		t.d.text(1, 5, "OK start  ESC back", colorFG)
	case bruteRunning:
		pr := b.progress
		t.d.text(1, 2, fmt.Sprintf("%s %d/%d", stateName(pr.State), pr.Current, pr.Total), colorFG)
		t.d.bar(3, pr.Current, pr.Total)
		t.d.text(1, 4, "eta "+formatDuration(pr.ETASeconds)+" run "+formatDuration(pr.ElapsedSeconds), colorFG)
		t.d.text(1, 6, "OK pause  ESC abort", colorFG)
	}
}

func (t *Task) renderRollJam() {
	t.d.inverted(0, "RollJam "+t.rolljam.String())
	t.d.waveform(t.samples)
	t.d.text(1, 4, fmt.Sprintf("samples %d  codes %d", len(t.samples), len(t.codes)), colorFG)
	if len(t.codes) > 0 {
		c := t.codes[0]
		t.d.text(1, 5, fmt.Sprintf("%d bit %X", c.Bits, c.Data[:(int(c.Bits)+7)/8]), colorFG)
	}
	switch t.rolljam {
	case rollIdle:
		t.d.text(1, 6, "OK jam+listen", colorFG)
	case rollListening:
		t.d.text(1, 6, "OK stop jam", colorFG)
	case rollCaptured:
		t.d.text(1, 6, "OK replay", colorFG)
	}
}

func (t *Task) renderJammer() {
	state := "off"
	if t.jamming {
		state = "ON"
	}
	t.d.inverted(0, "Jammer "+state)
	t.d.text(1, 2, fmt.Sprintf("pin %d", t.cfg.JamPin), colorFG)
	t.d.text(1, 3, fmt.Sprintf("%d.%03d kHz", t.jamFreq()/1000, t.jamFreq()%1000), colorFG)
	t.d.text(1, 5, "^v freq  OK toggle", colorFG)
}

func formatDuration(sec uint64) string {
	h, m, s := sec/3600, sec/60%60, sec%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
