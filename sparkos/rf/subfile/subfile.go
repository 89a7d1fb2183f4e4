// Package subfile reads and writes captures in the Flipper SubGhz RAW text
// format.
package subfile

import (
	"bufio"
	"bytes"
	"errors"
	"strconv"
	"strings"

	"multitool/sparkos/rf/pulse"
)

const (
	Filetype = "Flipper SubGhz RAW File"
	Version  = 1

	DefaultFrequency = 433_920_000
	DefaultPreset    = "FuriHalSubGhzPresetOok650Async"
	ProtocolRAW      = "RAW"

	// SamplesPerLine is the widest RAW_Data line written.
	SamplesPerLine = 20

	// Ext is the file extension used under the capture directory.
	Ext = ".sub"
)

// ErrNoSamples reports a file that yielded no RAW_Data samples.
var ErrNoSamples = errors.New("subfile: no samples")

// Header holds the key/value lines preceding the data.
type Header struct {
	Frequency uint32
	Preset    string
	Protocol  string
}

// DefaultHeader is the header written for fresh 433.92 MHz OOK captures.
func DefaultHeader() Header {
	return Header{Frequency: DefaultFrequency, Preset: DefaultPreset, Protocol: ProtocolRAW}
}

// Capture is one decoded file.
type Capture struct {
	Header  Header
	Samples []pulse.Sample
}

// Marshal encodes samples under the default header.
func Marshal(samples []pulse.Sample) []byte {
	return MarshalCapture(Capture{Header: DefaultHeader(), Samples: samples})
}

// MarshalCapture encodes c. Zero header fields fall back to the defaults.
func MarshalCapture(c Capture) []byte {
	h := c.Header
	def := DefaultHeader()
	if h.Frequency == 0 {
		h.Frequency = def.Frequency
	}
	if h.Preset == "" {
		h.Preset = def.Preset
	}
	if h.Protocol == "" {
		h.Protocol = def.Protocol
	}

	var b bytes.Buffer
	b.Grow(128 + len(c.Samples)*7)
	b.WriteString("Filetype: " + Filetype + "\n")
	b.WriteString("Version: " + strconv.Itoa(Version) + "\n")
	b.WriteString("Frequency: " + strconv.FormatUint(uint64(h.Frequency), 10) + "\n")
	b.WriteString("Preset: " + h.Preset + "\n")
	b.WriteString("Protocol: " + h.Protocol + "\n")

	var num [12]byte
	for i := 0; i < len(c.Samples); i += SamplesPerLine {
		end := i + SamplesPerLine
		if end > len(c.Samples) {
			end = len(c.Samples)
		}
		b.WriteString("RAW_Data:")
		for _, s := range c.Samples[i:end] {
			b.WriteByte(' ')
			b.Write(strconv.AppendInt(num[:0], int64(s), 10))
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Unmarshal decodes a .sub file. Unknown lines are skipped and a RAW_Data
// line is read up to its first token that is not an integer. A file with no
// samples returns the decoded header together with ErrNoSamples.
func Unmarshal(data []byte) (Capture, error) {
	c := Capture{Header: Header{Protocol: ProtocolRAW}}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 1024), 1<<20)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Frequency":
			if f, err := strconv.ParseUint(value, 10, 32); err == nil {
				c.Header.Frequency = uint32(f)
			}
		case "Preset":
			c.Header.Preset = value
		case "Protocol":
			c.Header.Protocol = value
		case "RAW_Data":
			c.Samples = appendSamples(c.Samples, value)
		}
	}
	if err := sc.Err(); err != nil {
		return c, err
	}
	if len(c.Samples) == 0 {
		return c, ErrNoSamples
	}
	return c, nil
}

func appendSamples(dst []pulse.Sample, line string) []pulse.Sample {
	for _, tok := range strings.Fields(line) {
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			break
		}
		if v > pulse.MaxDuration {
			v = pulse.MaxDuration
		} else if v < -pulse.MaxDuration {
			v = -pulse.MaxDuration
		}
		dst = append(dst, pulse.Sample(v))
	}
	return dst
}
