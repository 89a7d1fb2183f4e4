// Package encoder turns fixed-code remote codes into pulse trains.
package encoder

import "multitool/sparkos/rf/pulse"

const (
	// MaxBits is the widest code the encoder accepts.
	MaxBits = 24
	// MaxTrainLen bounds any train produced by Encode: 24 bits, two pairs per
	// bit and one sync pair fit with room to spare.
	MaxTrainLen = 128
)

// Encode writes the pulse train for the low bits of code, most significant
// bit first, into out and returns the number of samples written.
//
// Encode never writes past len(out). Samples are emitted in HIGH/LOW pairs
// and a pair that does not fit is dropped whole, so a short buffer yields a
// truncated train that still alternates levels: data without the trailing
// sync for sync-after protocols, sync plus leading bits for sync-before ones.
// A bits value outside 1..MaxBits writes nothing.
func Encode(p *Protocol, code uint32, bits int, out []pulse.Sample) int {
	if p == nil || bits < 1 || bits > MaxBits || p.PairsPerBit < 1 {
		return 0
	}

	n := 0
	emit := func(high, low uint32) {
		if n+2 > len(out) {
			return
		}
		out[n] = pulse.Mark(high)
		out[n+1] = pulse.Space(low)
		n += 2
	}

	if p.Sync == SyncBefore {
		emit(p.Short, p.SyncLow)
	}
	for i := bits - 1; i >= 0; i-- {
		high, low := p.Short, p.Long
		if code&(1<<uint(i)) != 0 {
			high, low = p.Long, p.Short
		}
		for j := 0; j < p.PairsPerBit; j++ {
			emit(high, low)
		}
	}
	if p.Sync == SyncAfter {
		emit(p.Short, p.SyncLow)
	}
	return n
}

// EncodeTrain is Encode into a freshly allocated MaxTrainLen buffer.
func EncodeTrain(p *Protocol, code uint32, bits int) []pulse.Sample {
	buf := make([]pulse.Sample, MaxTrainLen)
	return buf[:Encode(p, code, bits, buf)]
}
