package analyzer

import (
	"testing"
	"time"

	"multitool/sparkos/rf/pulse"
)

func repeat(s pulse.Sample, n int) []pulse.Sample {
	out := make([]pulse.Sample, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = s
		} else {
			out[i] = -s
		}
	}
	return out
}

func TestLayoutProportional(t *testing.T) {
	segs := Layout([]pulse.Sample{100, -300, 600}, 100)
	want := []Segment{{X: 0, Width: 10, High: true}, {X: 10, Width: 30}, {X: 40, Width: 60, High: true}}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segs))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Fatalf("segment %d: expected %+v, got %+v", i, want[i], segs[i])
		}
	}
}

func TestLayoutRoundsAndFloors(t *testing.T) {
	// 1/1000 of 128px rounds to 0 and is floored to 1.
	segs := Layout([]pulse.Sample{1, -999}, 128)
	if segs[0].Width != 1 {
		t.Fatalf("expected minimum width 1, got %d", segs[0].Width)
	}
	if segs[1].Width != 128 {
		t.Fatalf("expected 999/1000 of 128 to round to 128, got %d", segs[1].Width)
	}

	// 5/10 of 3px = 1.5 rounds half up.
	segs = Layout([]pulse.Sample{5, -5}, 3)
	if segs[0].Width != 2 || segs[1].Width != 2 {
		t.Fatalf("expected widths 2,2, got %d,%d", segs[0].Width, segs[1].Width)
	}
}

func TestLayoutNoOverflowOnLongCaptures(t *testing.T) {
	samples := make([]pulse.Sample, 512)
	for i := range samples {
		samples[i] = pulse.MaxDuration
	}
	segs := Layout(samples, 1<<20)
	if segs[0].Width != (1<<20)/512 {
		t.Fatalf("unexpected width %d", segs[0].Width)
	}
}

func TestLayoutEmpty(t *testing.T) {
	if Layout(nil, 128) != nil {
		t.Fatal("expected nil layout for no samples")
	}
	if Layout([]pulse.Sample{100}, 0) != nil {
		t.Fatal("expected nil layout for zero width")
	}
}

type rectRecorder struct {
	rects []Rect
}

func (r *rectRecorder) FillRect(x, y, w, h int) {
	r.rects = append(r.rects, Rect{X: x, Y: y, W: w, H: h})
}

func TestDrawRailsAndConnectors(t *testing.T) {
	var c rectRecorder
	Draw(&c, []pulse.Sample{50, -50}, Rect{X: 10, Y: 20, W: 100, H: 8})

	want := []Rect{
		{X: 10, Y: 20, W: 50, H: 1},
		{X: 60, Y: 20, W: 1, H: 8},
		{X: 60, Y: 27, W: 50, H: 1},
	}
	if len(c.rects) != len(want) {
		t.Fatalf("expected %d rects, got %v", len(want), c.rects)
	}
	for i := range want {
		if c.rects[i] != want[i] {
			t.Fatalf("rect %d: expected %+v, got %+v", i, want[i], c.rects[i])
		}
	}
}

func TestDrawClipsToRect(t *testing.T) {
	var c rectRecorder
	samples := append([]pulse.Sample{-100_000}, repeat(1, 299)...)
	r := Rect{X: 0, Y: 0, W: 64, H: 10}
	Draw(&c, samples, r)
	for _, rc := range c.rects {
		if rc.X < r.X || rc.X+rc.W > r.X+r.W || rc.Y < r.Y || rc.Y+rc.H > r.Y+r.H {
			t.Fatalf("rect %+v escapes %+v", rc, r)
		}
	}
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func TestPreambleBoundary(t *testing.T) {
	exact := append(repeat(400, 12), 2000, -2000)
	d := NewDetector(fixedNow)
	if n := d.Scan(exact); n != 1 {
		t.Fatalf("12-sample run: expected 1 code, got %d", n)
	}

	short := append(repeat(400, 11), 2000, -2000)
	d = NewDetector(fixedNow)
	if n := d.Scan(short); n != 0 {
		t.Fatalf("11-sample run: expected no code, got %d", n)
	}
}

func TestPreambleRunAtEndOfSequence(t *testing.T) {
	d := NewDetector(fixedNow)
	if n := d.Scan(repeat(350, 20)); n != 1 {
		t.Fatalf("expected run ending with the sequence to be detected, got %d", n)
	}
	c := d.Codes()[0]
	if c.Bits != 20 {
		t.Fatalf("expected 20 bits, got %d", c.Bits)
	}
}

func TestDecodeStartsAtRunStart(t *testing.T) {
	samples := []pulse.Sample{5000, -5000}
	samples = append(samples, repeat(400, 12)...)
	samples = append(samples, 800, -400, 460, -300, 900)

	d := NewDetector(fixedNow)
	if n := d.Scan(samples); n != 1 {
		t.Fatalf("expected 1 code, got %d", n)
	}
	c := d.Codes()[0]

	// 12 preamble zeros, then 1 (800), 0 (400: in window, still part of
	// the scan window), 1 (460), 0 (300), 1 (900).
	if c.Bits != 17 {
		t.Fatalf("expected 17 bits, got %d", c.Bits)
	}
	for i := 0; i < 12; i++ {
		if c.Bit(i) {
			t.Fatalf("preamble bit %d should be 0", i)
		}
	}
	want := []bool{true, false, true, false, true}
	for i, b := range want {
		if c.Bit(12+i) != b {
			t.Fatalf("data bit %d: expected %v", i, b)
		}
	}
	if !c.Keeloq || !c.CapturedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected metadata: keeloq=%v at=%v", c.Keeloq, c.CapturedAt)
	}
}

func TestDecodeCapsAt66Bits(t *testing.T) {
	samples := repeat(400, 12)
	for i := 0; i < 100; i++ {
		samples = append(samples, 1000)
	}
	d := NewDetector(fixedNow)
	d.Scan(samples)
	c := d.Codes()[0]
	if c.Bits != MaxCodeBits {
		t.Fatalf("expected %d bits, got %d", MaxCodeBits, c.Bits)
	}
	// 12 zeros then ones: byte 1 is 0b00001111, byte 8 holds bits 64,65.
	if c.Data[0] != 0 || c.Data[1] != 0x0F || c.Data[8] != 0xC0 {
		t.Fatalf("unexpected packing: % x", c.Data)
	}
}

func TestDetectorCapacityCap(t *testing.T) {
	d := NewDetector(fixedNow)
	frame := append(repeat(400, 12), 3000, -3000)
	for i := 0; i < 12; i++ {
		d.Scan(frame)
	}
	if d.Len() != MaxCodes {
		t.Fatalf("expected %d codes, got %d", MaxCodes, d.Len())
	}
	if n := d.Scan(frame); n != 0 {
		t.Fatalf("expected full detector to add nothing, added %d", n)
	}
	d.Reset()
	if d.Len() != 0 {
		t.Fatal("expected empty detector after Reset")
	}
}

func TestMultipleRunsInOneScan(t *testing.T) {
	var samples []pulse.Sample
	for i := 0; i < 3; i++ {
		samples = append(samples, repeat(450, 14)...)
		samples = append(samples, 8000, -8000)
	}
	d := NewDetector(fixedNow)
	if n := d.Scan(samples); n != 3 {
		t.Fatalf("expected 3 codes, got %d", n)
	}
}
