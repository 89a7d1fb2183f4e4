package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"multitool/internal/buildinfo"
	"multitool/sparkos/rf/encoder"
)

type tool struct {
	fs  afero.Fs
	log *logrus.Logger
}

func newRootCmd(fs afero.Fs, log *logrus.Logger) *cobra.Command {
	t := &tool{fs: fs, log: log}
	var verbose bool

	root := &cobra.Command{
		Use:          "subtool",
		Short:        "Encode, inspect and convert .sub pulse captures",
		Version:      buildinfo.Long(),
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		t.protocolsCmd(),
		t.encodeCmd(),
		t.inspectCmd(),
		t.etaCmd(),
		t.dbCmd(),
	)
	return root
}

// lookupProtocol accepts a protocol name or its numeric id.
func lookupProtocol(s string) (*encoder.Protocol, error) {
	if p, ok := encoder.ByName(s); ok {
		return p, nil
	}
	if id, err := strconv.ParseUint(s, 10, 8); err == nil {
		if p, ok := encoder.ByID(uint8(id)); ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown protocol %q", s)
}

// widthFor resolves a --bits value; 0 selects the protocol default.
func (t *tool) widthFor(p *encoder.Protocol, bits int) (int, error) {
	if bits == 0 {
		return p.DefaultBits(), nil
	}
	if bits < 1 || bits > encoder.MaxBits {
		return 0, fmt.Errorf("bits %d out of range (1..%d)", bits, encoder.MaxBits)
	}
	if !p.Supports(bits) {
		t.log.WithFields(logrus.Fields{"protocol": p.Name, "bits": bits}).Warn("non-nominal code width")
	}
	return bits, nil
}

func (t *tool) protocolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "List the fixed-code protocols",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-3s %-9s %6s %6s %6s  %s\n", "ID", "NAME", "SHORT", "LONG", "SYNC", "BITS")
			for _, p := range encoder.Protocols {
				fmt.Fprintf(out, "%-3d %-9s %6d %6d %6d  %v\n", p.ID, p.Name, p.Short, p.Long, p.SyncLow, p.BitCounts)
			}
		},
	}
}
