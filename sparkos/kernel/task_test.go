package kernel

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type echoTask struct {
	in  Capability
	out chan<- string
}

func (t *echoTask) Run(ctx *Context) {
	ch, ok := ctx.RecvChan(t.in)
	if !ok {
		return
	}
	for msg := range ch {
		t.out <- string(msg.Payload())
	}
	close(t.out)
}

func TestTaskStopsOnClose(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	out := make(chan string, 4)
	k.AddTask(&echoTask{in: ep.Restrict(RightRecv), out: out})

	ctx := &Context{k: k}
	if res := ctx.SendToCapResult(ep.Restrict(RightSend), 1, []byte("ping"), Capability{}); res != SendOK {
		t.Fatalf("send: %s", res)
	}

	select {
	case got := <-out:
		if got != "ping" {
			t.Fatalf("expected ping, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for echo")
	}

	k.Close()
	k.Wait()
	if _, ok := <-out; ok {
		t.Fatal("expected task to close its output")
	}
}

func TestCloseReleasesTickWaiters(t *testing.T) {
	k := New()
	done := make(chan uint64, 1)
	go func() {
		ctx := &Context{k: k}
		done <- ctx.WaitTick(5)
	}()

	k.TickTo(3)
	k.Close()

	select {
	case got := <-done:
		if got != 3 {
			t.Fatalf("expected tick 3 after close, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitTick did not return after Close")
	}
}

type panicTask struct{}

func (panicTask) Run(*Context) { panic("boom") }

func TestTaskPanicReachesHandler(t *testing.T) {
	got := make(chan PanicInfo, 1)
	SetPanicHandler(func(info PanicInfo) { got <- info })

	k := New()
	id := k.AddTask(panicTask{})
	k.Wait()

	select {
	case info := <-got:
		if info.TaskID != id || info.Value != "boom" {
			t.Fatalf("unexpected panic info: task=%d value=%v", info.TaskID, info.Value)
		}
		if len(info.Stack) == 0 || len(info.Frames()) == 0 {
			t.Fatal("expected stack trace")
		}
		if !strings.HasPrefix(info.Summary(), fmt.Sprintf("task %d @", id)) {
			t.Fatalf("unexpected summary %q", info.Summary())
		}
	case <-time.After(time.Second):
		t.Fatal("panic handler not called")
	}
	if !InPanicMode() {
		t.Fatal("expected panic mode")
	}
}
