package subfile

import (
	"errors"
	"strings"
	"testing"

	"multitool/sparkos/rf/pulse"
)

func sampleRun(n int) []pulse.Sample {
	out := make([]pulse.Sample, n)
	for i := range out {
		us := pulse.Sample(100 + i*13)
		if i%2 == 1 {
			us = -us
		}
		out[i] = us
	}
	return out
}

func TestRoundTripAcrossLineBoundary(t *testing.T) {
	in := sampleRun(45)
	text := Marshal(in)

	lines := 0
	for _, l := range strings.Split(string(text), "\n") {
		if strings.HasPrefix(l, "RAW_Data:") {
			lines++
			if n := len(strings.Fields(strings.TrimPrefix(l, "RAW_Data:"))); n > SamplesPerLine {
				t.Fatalf("line holds %d samples", n)
			}
		}
	}
	if lines != 3 {
		t.Fatalf("expected 3 RAW_Data lines, got %d", lines)
	}

	c, err := Unmarshal(text)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(c.Samples) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(c.Samples))
	}
	for i := range in {
		if c.Samples[i] != in[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, in[i], c.Samples[i])
		}
	}
	if c.Header != DefaultHeader() {
		t.Fatalf("unexpected header %+v", c.Header)
	}
}

func TestHeaderLayout(t *testing.T) {
	text := string(MarshalCapture(Capture{
		Header:  Header{Frequency: 315_000_000, Preset: "FuriHalSubGhzPresetOok270Async"},
		Samples: []pulse.Sample{350, -1050},
	}))
	want := "Filetype: Flipper SubGhz RAW File\n" +
		"Version: 1\n" +
		"Frequency: 315000000\n" +
		"Preset: FuriHalSubGhzPresetOok270Async\n" +
		"Protocol: RAW\n" +
		"RAW_Data: 350 -1050\n"
	if text != want {
		t.Fatalf("unexpected file:\n%s", text)
	}
}

func TestEmptyCaptureHasNoDataLines(t *testing.T) {
	text := string(Marshal(nil))
	if strings.Contains(text, "RAW_Data") {
		t.Fatalf("unexpected data line in %q", text)
	}
	if _, err := Unmarshal([]byte(text)); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestUnmarshalTolerance(t *testing.T) {
	text := "Filetype: Flipper SubGhz RAW File\r\n" +
		"Version: 1\n" +
		"Frequency: 433920000\n" +
		"# a comment\n" +
		"Preset: FuriHalSubGhzPresetOok650Async\n" +
		"Protocol: RAW\n" +
		"RAW_Data: 10 -20 30\n" +
		"garbage line\n" +
		"RAW_Data: 40 -50 x 60\n" +
		"RAW_Data: 200000 -200000\n" +
		"RAW_Data: oops 70\n"

	c, err := Unmarshal([]byte(text))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []pulse.Sample{10, -20, 30, 40, -50, pulse.MaxDuration, -pulse.MaxDuration}
	if len(c.Samples) != len(want) {
		t.Fatalf("expected %v, got %v", want, c.Samples)
	}
	for i := range want {
		if c.Samples[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, c.Samples)
		}
	}
	if c.Header.Frequency != 433920000 {
		t.Fatalf("unexpected frequency %d", c.Header.Frequency)
	}
}

func TestUnmarshalCorruptData(t *testing.T) {
	_, err := Unmarshal([]byte("Filetype: Flipper SubGhz RAW File\nRAW_Data: abc\n"))
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}
