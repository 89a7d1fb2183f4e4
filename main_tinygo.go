//go:build tinygo

package main

import (
	"github.com/spf13/afero"

	"multitool/app"
	"multitool/hal"
)

func main() {
	// Captures live in RAM until the board grows a flash filesystem.
	app.RunWithConfig(hal.New(), app.Config{FS: afero.NewMemMapFs()})
}
