package app

import (
	"strings"
	"testing"

	"multitool/sparkos/kernel"
)

func TestPanicLines(t *testing.T) {
	lines := panicLines(kernel.PanicInfo{TaskID: 3, Tick: 42, Value: "boom", Stack: []byte("a\n\n  b  \n")})
	want := []string{"PANIC", "task: 3 tick: 42", "panic: boom", "stack:", "a", "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("panicLines: got %q want %q", lines, want)
	}

	lines = panicLines(kernel.PanicInfo{TaskID: 1, Value: 7})
	if got := lines[len(lines)-1]; got != "stack: unavailable" {
		t.Fatalf("last line: %q", got)
	}
}

func TestTakeRunes(t *testing.T) {
	for _, tt := range []struct {
		in         string
		n          int
		head, tail string
	}{
		{"abcdef", 4, "abcd", "ef"},
		{"abc", 4, "abc", ""},
		{"äöü", 2, "äö", "ü"},
		{"abc", 0, "", "abc"},
	} {
		head, tail := takeRunes(tt.in, tt.n)
		if head != tt.head || tail != tt.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q", tt.in, tt.n, head, tail)
		}
	}
}
