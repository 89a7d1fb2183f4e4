// Package pulse defines the signed-duration sample used everywhere a radio
// waveform is captured, encoded, stored or replayed.
package pulse

// Sample is one interval of a pulse train in microseconds. A positive value
// is a mark (carrier on, pin HIGH); a negative value is a space (pin LOW).
type Sample int32

// MaxDuration is the longest interval a sample can hold.
const MaxDuration = 100_000

// Mark returns a HIGH sample of us microseconds.
func Mark(us uint32) Sample { return Sample(Clamp(us)) }

// Space returns a LOW sample of us microseconds.
func Space(us uint32) Sample { return -Sample(Clamp(us)) }

// Clamp limits us to MaxDuration.
func Clamp(us uint32) uint32 {
	if us > MaxDuration {
		return MaxDuration
	}
	return us
}

// High reports whether the sample is a mark.
func (s Sample) High() bool { return s > 0 }

// Micros returns the magnitude of the sample.
func (s Sample) Micros() uint32 {
	if s < 0 {
		return uint32(-s)
	}
	return uint32(s)
}

// TotalMicros sums the magnitudes of a train.
func TotalMicros(samples []Sample) uint64 {
	var total uint64
	for _, s := range samples {
		total += uint64(s.Micros())
	}
	return total
}
