package logger

import (
	"testing"
	"time"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

type lineLog struct {
	lines chan string
}

func (l *lineLog) WriteLineString(s string) { l.lines <- s }
func (l *lineLog) WriteLineBytes(b []byte)  { l.lines <- string(b) }

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"rf: capture started\n", "rf: capture started"},
		{"a\r\n\r\n", "a"},
		{"bad\x1bname\x7f.sub", "bad.name..sub"},
		{"tab\tok", "tab\tok"},
		{"\n", ""},
	}
	for _, tt := range tests {
		if got := string(sanitize(nil, []byte(tt.in))); got != tt.want {
			t.Fatalf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestServiceWritesLines(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	log := &lineLog{lines: make(chan string, 4)}
	k.AddTask(New(log, ep.Restrict(kernel.RightRecv)))

	send := ep.Restrict(kernel.RightSend)
	k.AddTask(kernel.TaskFunc(func(c *kernel.Context) {
		c.SendToCapResult(send, uint16(proto.MsgWake), []byte("ignored"), kernel.Capability{})
		c.SendToCapResult(send, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte("\n")), kernel.Capability{})
		c.SendToCapResult(send, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte("rf: jammer on\n")), kernel.Capability{})
	}))

	select {
	case got := <-log.lines:
		if got != "rf: jammer on" {
			t.Fatalf("first line %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no log line written")
	}

	k.Close()
	k.Wait()
}
