package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"multitool/sparkos/rf/analyzer"
	"multitool/sparkos/rf/pulse"
	"multitool/sparkos/rf/subfile"
)

func (t *tool) inspectCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Summarize captures and list preamble-led codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := t.inspect(cmd.OutOrStdout(), name, width); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "wave", "w", 0, "also print an ASCII waveform this many columns wide")
	return cmd
}

func (t *tool) inspect(out io.Writer, name string, width int) error {
	data, err := afero.ReadFile(t.fs, name)
	if err != nil {
		return err
	}
	c, err := subfile.Unmarshal(data)
	if err != nil && !errors.Is(err, subfile.ErrNoSamples) {
		return err
	}

	fmt.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "  frequency: %d Hz\n", c.Header.Frequency)
	fmt.Fprintf(out, "  preset:    %s\n", c.Header.Preset)
	fmt.Fprintf(out, "  protocol:  %s\n", c.Header.Protocol)
	if len(c.Samples) == 0 {
		t.log.WithField("file", name).Warn("capture has no samples")
		fmt.Fprintf(out, "  samples:   0\n")
		return nil
	}

	st := summarize(c.Samples)
	fmt.Fprintf(out, "  samples:   %d (%d marks, %d spaces)\n", len(c.Samples), st.marks, st.spaces)
	fmt.Fprintf(out, "  duration:  %s\n", time.Duration(st.totalUs)*time.Microsecond)
	fmt.Fprintf(out, "  pulses:    %dµs .. %dµs\n", st.minUs, st.maxUs)

	det := analyzer.NewDetector(nil)
	det.Scan(c.Samples)
	fmt.Fprintf(out, "  codes:     %d\n", det.Len())
	for i, code := range det.Codes() {
		tag := ""
		if code.Keeloq {
			tag = " keeloq?"
		}
		fmt.Fprintf(out, "    #%d %2d bits %s%s\n", i+1, code.Bits, bitString(&code), tag)
	}

	if width > 0 {
		fmt.Fprintf(out, "  %s\n", asciiWave(c.Samples, width))
	}
	t.log.WithFields(logrus.Fields{"file": name, "samples": len(c.Samples)}).Debug("inspected")
	return nil
}

type sampleStats struct {
	marks, spaces int
	minUs, maxUs  uint32
	totalUs       uint64
}

func summarize(samples []pulse.Sample) sampleStats {
	st := sampleStats{minUs: pulse.MaxDuration, totalUs: pulse.TotalMicros(samples)}
	for _, s := range samples {
		if s.High() {
			st.marks++
		} else {
			st.spaces++
		}
		us := s.Micros()
		st.minUs = min(st.minUs, us)
		st.maxUs = max(st.maxUs, us)
	}
	return st
}

func bitString(c *analyzer.CapturedCode) string {
	var b strings.Builder
	for i := 0; i < c.Bits; i++ {
		if c.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// asciiWave renders samples with '#' for marks and '_' for spaces, cut at
// width columns.
func asciiWave(samples []pulse.Sample, width int) string {
	var b strings.Builder
	for _, seg := range analyzer.Layout(samples, width) {
		ch := byte('_')
		if seg.High {
			ch = '#'
		}
		for i := 0; i < seg.Width && b.Len() < width; i++ {
			b.WriteByte(ch)
		}
	}
	return b.String()
}
