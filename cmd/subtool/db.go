package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"multitool/sparkos/rf/codedb"
	"multitool/sparkos/rf/encoder"
	"multitool/sparkos/rf/subfile"
)

func (t *tool) dbCmd() *cobra.Command {
	var all bool
	var outDir string
	cmd := &cobra.Command{
		Use:   "db FILE.csv",
		Short: "List a brand,protocol_id,hex_code,bits database, optionally exporting .sub files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := t.fs.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := codedb.Parse(f)
			if err != nil {
				return err
			}
			rf := codedb.RF(entries)
			t.log.WithFields(logrus.Fields{"rows": len(entries), "rf": len(rf)}).Debug("parsed code database")
			if !all {
				entries = rf
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintln(out, e.String())
			}
			if outDir == "" {
				return nil
			}
			n, err := t.export(rf, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "exported %d files to %s\n", n, outDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also list rows without an RF protocol")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write one .sub file per RF row into this directory")
	return cmd
}

func (t *tool) export(entries []codedb.Entry, dir string) (int, error) {
	if err := t.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		p, ok := e.Protocol()
		if !ok {
			continue
		}
		data := subfile.Marshal(encoder.EncodeTrain(p, e.Code, e.Bits))
		name := path.Join(dir, exportName(e))
		if err := afero.WriteFile(t.fs, name, data, 0o644); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// exportName is brand_protocol_code.sub with the brand reduced to
// lowercase alphanumerics.
func exportName(e codedb.Entry) string {
	var b strings.Builder
	for _, r := range strings.ToLower(e.Brand) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	brand := strings.TrimSuffix(b.String(), "-")
	if brand == "" {
		brand = "code"
	}
	return fmt.Sprintf("%s_%d_%0*X%s", brand, e.ProtocolID, (e.Bits+3)/4, e.Code, subfile.Ext)
}
