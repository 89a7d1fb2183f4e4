package timesvc

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSleepWakesAfterTicks(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	reply := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	ticks := make(chan uint64)
	k.AddTask(New(ticks, ep.Restrict(kernel.RightRecv)))

	woke := make(chan uint32, 2)
	sent := make(chan struct{})
	k.AddTask(kernel.TaskFunc(func(ctx *kernel.Context) {
		res := ctx.SendToCapResult(ep.Restrict(kernel.RightSend), uint16(proto.MsgSleep), proto.SleepPayload(7, 3), reply.Restrict(kernel.RightSend))
		close(sent)
		if res != kernel.SendOK {
			t.Errorf("send: %s", res)
			close(woke)
			return
		}
		msg, ok := ctx.Recv(reply.Restrict(kernel.RightRecv))
		if !ok || proto.Kind(msg.Kind) != proto.MsgWake {
			close(woke)
			return
		}
		id, _ := proto.DecodeWakePayload(msg.Payload())
		woke <- id
	}))

	<-sent
	time.Sleep(20 * time.Millisecond)

	ticks <- 1
	ticks <- 2
	select {
	case <-woke:
		t.Fatal("woke before the deadline")
	case <-time.After(20 * time.Millisecond):
	}
	ticks <- 3

	select {
	case id, ok := <-woke:
		if !ok || id != 7 {
			t.Fatalf("expected wake for request 7, got %d ok=%v", id, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("no wake")
	}

	k.Close()
	k.Wait()
}
