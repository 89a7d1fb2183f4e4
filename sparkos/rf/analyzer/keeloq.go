package analyzer

import (
	"time"

	"multitool/sparkos/rf/pulse"
)

const (
	// Preamble pulses are "short": magnitudes inside [PreambleMinUs, PreambleMaxUs].
	PreambleMinUs = 300
	PreambleMaxUs = 500
	// PreambleMinRun is the shortest run of short pulses treated as a preamble.
	PreambleMinRun = 12
	// BitThresholdUs splits long (1) from short (0) pulses.
	BitThresholdUs = 450
	// MaxCodeBits is the frame size of a Keeloq transmission.
	MaxCodeBits = 66
	// MaxCodes caps how many codes a Detector keeps.
	MaxCodes = 8
)

// CapturedCode is one decoded frame. Data holds Bits bits, MSB first.
type CapturedCode struct {
	Data       [(MaxCodeBits + 7) / 8]byte
	Bits       int
	CapturedAt time.Time
	// Keeloq marks a frame that followed a Keeloq-like preamble. It is a
	// heuristic hint, nothing is validated.
	Keeloq bool
}

// Bit returns bit i of the frame (0 is the first received).
func (c *CapturedCode) Bit(i int) bool {
	if i < 0 || i >= c.Bits {
		return false
	}
	return c.Data[i/8]&(0x80>>uint(i%8)) != 0
}

// Detector collects preamble-led frames across successive drains. Once
// MaxCodes are stored further detections are ignored; there is no eviction.
type Detector struct {
	now   func() time.Time
	codes []CapturedCode
}

// NewDetector returns a detector stamping codes with now (time.Now if nil).
func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{now: now, codes: make([]CapturedCode, 0, MaxCodes)}
}

// Scan looks for preamble runs in samples and records a code for each one
// while there is room. It returns the number of codes added.
//
// Bit extraction starts at the first sample of the preamble run, so the
// preamble pulses themselves lead the recovered bits. Real Keeloq frames have
// not been checked against this, so the offset is kept as is.
func (d *Detector) Scan(samples []pulse.Sample) int {
	added := 0
	runStart, runLen := 0, 0

	finish := func() {
		if runLen >= PreambleMinRun {
			if d.record(samples[runStart:]) {
				added++
			}
		}
		runLen = 0
	}

	for i, s := range samples {
		m := s.Micros()
		if m >= PreambleMinUs && m <= PreambleMaxUs {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			continue
		}
		finish()
	}
	finish()
	return added
}

func (d *Detector) record(from []pulse.Sample) bool {
	if len(d.codes) >= MaxCodes {
		return false
	}
	var c CapturedCode
	for _, s := range from {
		if c.Bits >= MaxCodeBits {
			break
		}
		if s.Micros() > BitThresholdUs {
			c.Data[c.Bits/8] |= 0x80 >> uint(c.Bits%8)
		}
		c.Bits++
	}
	c.CapturedAt = d.now()
	c.Keeloq = true
	d.codes = append(d.codes, c)
	return true
}

// Codes returns the stored codes, oldest first.
func (d *Detector) Codes() []CapturedCode {
	out := make([]CapturedCode, len(d.codes))
	copy(out, d.codes)
	return out
}

// Len returns the number of stored codes.
func (d *Detector) Len() int { return len(d.codes) }

// Reset forgets every stored code.
func (d *Detector) Reset() { d.codes = d.codes[:0] }
