package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"multitool/sparkos/rf/bruteforce"
	"multitool/sparkos/rf/encoder"
)

func (t *tool) etaCmd() *cobra.Command {
	var proto string
	var bits int
	cmd := &cobra.Command{
		Use:   "eta",
		Short: "Estimate how long a full bruteforce sweep takes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := lookupProtocol(proto)
			if err != nil {
				return err
			}
			w, err := t.widthFor(p, bits)
			if err != nil {
				return err
			}
			perCode, codes, total := sweepEstimate(p, w)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "protocol: %s (%d bits)\n", p.Name, w)
			fmt.Fprintf(out, "codes:    %d\n", codes)
			fmt.Fprintf(out, "per code: %s (%d repeats)\n", time.Duration(perCode)*time.Microsecond, bruteforce.Repeats)
			fmt.Fprintf(out, "total:    %s\n", total.Round(time.Second))
			return nil
		},
	}
	cmd.Flags().StringVarP(&proto, "protocol", "p", "", "protocol name or id")
	cmd.Flags().IntVarP(&bits, "bits", "b", 0, "code width (default: protocol default)")
	_ = cmd.MarkFlagRequired("protocol")
	return cmd
}

// sweepEstimate returns the air time of one candidate in µs, the code space
// and the whole sweep duration.
func sweepEstimate(p *encoder.Protocol, bits int) (perCodeUs, codes uint64, total time.Duration) {
	perCodeUs = bruteforce.EstimatePerCode(encoder.EncodeTrain(p, 0, bits))
	codes = uint64(1) << uint(bits)
	return perCodeUs, codes, time.Duration(perCodeUs*codes) * time.Microsecond
}
