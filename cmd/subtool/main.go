// Command subtool builds and inspects .sub pulse captures on the host.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if err := newRootCmd(afero.NewOsFs(), log).Execute(); err != nil {
		os.Exit(1)
	}
}
