package kernel

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// PanicInfo describes the first task panic. The device stops scheduling
// after it and shows these fields on the panic screen.
type PanicInfo struct {
	TaskID TaskID
	// Tick is the kernel tick when the task panicked.
	Tick  uint64
	Value any
	// Stack is nil on boards without runtime tracebacks.
	Stack []byte
}

func (p PanicInfo) Summary() string {
	return fmt.Sprintf("task %d @%d: %v", p.TaskID, p.Tick, p.Value)
}

// Frames returns the non-blank stack lines, trimmed.
func (p PanicInfo) Frames() []string {
	var out []string
	for _, line := range strings.Split(string(p.Stack), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// PanicHandler reports a task panic. It runs on the panicking goroutine and
// usually never returns.
type PanicHandler func(PanicInfo)

var panicState struct {
	once    sync.Once
	active  atomic.Bool
	handler atomic.Pointer[PanicHandler]
}

// InPanicMode reports whether a task has panicked.
func InPanicMode() bool {
	return panicState.active.Load()
}

// SetPanicHandler replaces the process-wide handler. Only the first panic
// reaches it.
func SetPanicHandler(fn PanicHandler) {
	if fn == nil {
		panicState.handler.Store(nil)
		return
	}
	panicState.handler.Store(&fn)
}

func triggerPanic(info PanicInfo) {
	panicState.once.Do(func() {
		panicState.active.Store(true)
		info.Stack = captureStack()
		if fn := panicState.handler.Load(); fn != nil {
			(*fn)(info)
		}
	})
}
