package encoder

import (
	"testing"

	"multitool/sparkos/rf/pulse"
)

func samplesEqual(a, b []pulse.Sample) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEncodePT2262TwoBits(t *testing.T) {
	got := EncodeTrain(&PT2262, 0b10, 2)
	want := []pulse.Sample{1050, -350, 1050, -350, 350, -1050, 350, -1050, 350, -10850}
	if !samplesEqual(got, want) {
		t.Fatalf("PT2262 0b10/2:\n got %v\nwant %v", got, want)
	}
}

func TestEncodeCAMEOneBit(t *testing.T) {
	got := EncodeTrain(&CAME, 0b1, 1)
	want := []pulse.Sample{320, -9920, 640, -320}
	if !samplesEqual(got, want) {
		t.Fatalf("CAME 0b1/1:\n got %v\nwant %v", got, want)
	}
}

func TestEncodeNiceFLO(t *testing.T) {
	got := EncodeTrain(&NiceFLO, 0b101, 3)
	want := []pulse.Sample{700, -25200, 1400, -700, 700, -1400, 1400, -700}
	if !samplesEqual(got, want) {
		t.Fatalf("Nice FLO 0b101/3:\n got %v\nwant %v", got, want)
	}
}

func TestEncodeFrameLengths(t *testing.T) {
	for _, p := range Protocols {
		for _, bits := range p.BitCounts {
			train := EncodeTrain(p, 0, bits)
			if len(train) != p.FrameLen(bits) {
				t.Fatalf("%s/%d: expected %d samples, got %d", p.Name, bits, p.FrameLen(bits), len(train))
			}
			if len(train) > MaxTrainLen {
				t.Fatalf("%s/%d: train exceeds MaxTrainLen", p.Name, bits)
			}
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	for _, p := range Protocols {
		for _, bits := range p.BitCounts {
			code := uint32(0xA5A5A5) & (1<<uint(bits) - 1)
			a := EncodeTrain(p, code, bits)
			b := EncodeTrain(p, code, bits)
			if !samplesEqual(a, b) {
				t.Fatalf("%s/%d: encode not deterministic", p.Name, bits)
			}
		}
	}
}

func TestEncodeIgnoresHighBits(t *testing.T) {
	a := EncodeTrain(&CAME, 0xFFF, 12)
	b := EncodeTrain(&CAME, 0xFFFFFF, 12)
	if !samplesEqual(a, b) {
		t.Fatal("bits above the frame width changed the train")
	}
}

func TestEncodeRespectsCapacity(t *testing.T) {
	for _, p := range Protocols {
		bits := p.BitCounts[len(p.BitCounts)-1]
		full := EncodeTrain(p, 0xABCDEF, bits)
		for capacity := 0; capacity < len(full); capacity++ {
			out := make([]pulse.Sample, capacity+4)
			const guard = pulse.Sample(12345)
			for i := range out {
				out[i] = guard
			}
			n := Encode(p, 0xABCDEF, bits, out[:capacity])
			if n > capacity {
				t.Fatalf("%s cap=%d: wrote %d", p.Name, capacity, n)
			}
			if n%2 != 0 {
				t.Fatalf("%s cap=%d: odd sample count %d", p.Name, capacity, n)
			}
			for i := capacity; i < len(out); i++ {
				if out[i] != guard {
					t.Fatalf("%s cap=%d: overrun at %d", p.Name, capacity, i)
				}
			}
			if !samplesEqual(out[:n], full[:n]) {
				t.Fatalf("%s cap=%d: truncated train is not a prefix of the full train", p.Name, capacity)
			}
			for i := 0; i < n; i++ {
				if out[i].High() != (i%2 == 0) {
					t.Fatalf("%s cap=%d: level does not alternate at %d", p.Name, capacity, i)
				}
			}
		}
	}
}

func TestEncodeTruncationDropsTrailingSync(t *testing.T) {
	out := make([]pulse.Sample, 8)
	n := Encode(&PT2262, 0b10, 2, out)
	if n != 8 {
		t.Fatalf("expected 8 samples, got %d", n)
	}
	for _, s := range out[:n] {
		if s == -pulse.Sample(PT2262.SyncLow) {
			t.Fatal("sync emitted into a buffer too small for it")
		}
	}
}

func TestEncodeRejectsBadBitCounts(t *testing.T) {
	out := make([]pulse.Sample, MaxTrainLen)
	for _, bits := range []int{0, -1, MaxBits + 1, 32} {
		if n := Encode(&PT2262, 1, bits, out); n != 0 {
			t.Fatalf("bits=%d: expected 0 samples, got %d", bits, n)
		}
	}
	if n := Encode(nil, 1, 12, out); n != 0 {
		t.Fatalf("nil protocol: expected 0 samples, got %d", n)
	}
}

func TestEncodePassesThroughNonNominalWidths(t *testing.T) {
	if CAME.Supports(24) {
		t.Fatal("CAME should not list 24 bits as nominal")
	}
	train := EncodeTrain(&CAME, 0xFFFFFF, 24)
	if len(train) != CAME.FrameLen(24) {
		t.Fatalf("expected %d samples, got %d", CAME.FrameLen(24), len(train))
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"pt2262", "CAME", "nice-flo", "NiceFLO", "Nice FLO"} {
		if _, ok := ByName(name); !ok {
			t.Fatalf("ByName(%q) failed", name)
		}
	}
	if _, ok := ByName("keeloq"); ok {
		t.Fatal("ByName(keeloq) should fail")
	}
	p, ok := ByID(3)
	if !ok || p != &NiceFLO {
		t.Fatal("ByID(3) should return Nice FLO")
	}
}

func TestParseCode(t *testing.T) {
	cases := map[string]uint32{"0x1F": 0x1F, "abc": 0xABC, " FFFFFF ": 0xFFFFFF, "0X10": 0x10}
	for in, want := range cases {
		got, err := ParseCode(in)
		if err != nil {
			t.Fatalf("ParseCode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCode(%q) = %#x, want %#x", in, got, want)
		}
	}
	if _, err := ParseCode("xyz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}
