//go:build !tinygo

package kernel

import "runtime/debug"

// maxStackBytes bounds the trace kept for the log and the panic screen.
const maxStackBytes = 4096

func captureStack() []byte {
	st := debug.Stack()
	if len(st) > maxStackBytes {
		st = st[:maxStackBytes]
	}
	return st
}
