// Package analyzer scales captured pulse trains for display and looks for
// rolling-code preambles in them.
package analyzer

import "multitool/sparkos/rf/pulse"

// Segment is the horizontal extent of one sample on screen.
type Segment struct {
	X     int
	Width int
	High  bool
}

// Rect is a drawing area in pixels.
type Rect struct {
	X, Y, W, H int
}

// Canvas fills axis-aligned rectangles; it is the only drawing primitive the
// waveform needs.
type Canvas interface {
	FillRect(x, y, w, h int)
}

// Layout scales samples onto width pixels: each sample gets
// round(|s|*width/total) pixels, but never less than one, so short pulses in
// long captures look wider than they are and the layout may run past width.
func Layout(samples []pulse.Sample, width int) []Segment {
	if len(samples) == 0 || width <= 0 {
		return nil
	}
	total := pulse.TotalMicros(samples)
	if total == 0 {
		return nil
	}

	segs := make([]Segment, 0, len(samples))
	x := 0
	w := uint64(width)
	for _, s := range samples {
		px := int((uint64(s.Micros())*w*2 + total) / (2 * total))
		if px < 1 {
			px = 1
		}
		segs = append(segs, Segment{X: x, Width: px, High: s.High()})
		x += px
	}
	return segs
}

// Draw renders samples as a two-rail logic trace inside r, with vertical
// connectors where the level changes. Everything is clipped to r.
func Draw(c Canvas, samples []pulse.Sample, r Rect) {
	if c == nil || r.W <= 0 || r.H <= 0 {
		return
	}
	hiY := r.Y
	loY := r.Y + r.H - 1
	right := r.X + r.W

	clipped := func(x, y, w, h int) {
		if x >= right {
			return
		}
		if x+w > right {
			w = right - x
		}
		if w > 0 && h > 0 {
			c.FillRect(x, y, w, h)
		}
	}

	segs := Layout(samples, r.W)
	for i, seg := range segs {
		x := r.X + seg.X
		if x >= right {
			return
		}
		y := loY
		if seg.High {
			y = hiY
		}
		if i > 0 && segs[i-1].High != seg.High {
			clipped(x, hiY, 1, r.H)
		}
		clipped(x, y, seg.Width, 1)
	}
}
