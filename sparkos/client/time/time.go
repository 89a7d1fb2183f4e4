package time

import (
	"errors"
	"fmt"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

// Timer requests wakeups from the time service. Replies arrive on C so a
// task can select on them alongside its other inputs.
type Timer struct {
	timeCap kernel.Capability

	replySend kernel.Capability
	ch        <-chan kernel.Message

	waitingID uint32
	nextID    uint32
}

// NewTimer allocates the reply endpoint for a task's timer.
func NewTimer(ctx *kernel.Context, timeCap kernel.Capability) (*Timer, error) {
	ep := ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !ep.Valid() {
		return nil, errors.New("time: allocate reply endpoint")
	}
	ch, ok := ctx.RecvChan(ep.Restrict(kernel.RightRecv))
	if !ok {
		return nil, errors.New("time: invalid reply capability")
	}
	return &Timer{timeCap: timeCap, replySend: ep.Restrict(kernel.RightSend), ch: ch}, nil
}

// C delivers the time service replies.
func (t *Timer) C() <-chan kernel.Message { return t.ch }

// Arm asks for a wakeup after dt ticks. A previously armed wakeup is
// superseded: its reply is ignored by Fired.
func (t *Timer) Arm(ctx *kernel.Context, dt uint32) error {
	t.nextID++
	if t.nextID == 0 {
		t.nextID++
	}
	t.waitingID = t.nextID

	res := ctx.SendToCapRetry(t.timeCap, uint16(proto.MsgSleep), proto.SleepPayload(t.waitingID, dt), t.replySend, 8)
	if res != kernel.SendOK {
		t.waitingID = 0
		return fmt.Errorf("time sleep send: %s", res)
	}
	return nil
}

// Fired reports whether msg is the wakeup for the latest Arm.
func (t *Timer) Fired(msg kernel.Message) bool {
	switch proto.Kind(msg.Kind) {
	case proto.MsgWake:
		id, ok := proto.DecodeWakePayload(msg.Payload())
		if !ok || id != t.waitingID || id == 0 {
			return false
		}
		t.waitingID = 0
		return true
	case proto.MsgError:
		_, _, detail, ok := proto.DecodeErrorPayload(msg.Payload())
		if !ok {
			return false
		}
		id, _, ok := proto.DecodeErrorDetailWithRequestID(detail)
		if !ok || id != t.waitingID || id == 0 {
			return false
		}
		t.waitingID = 0
		return true
	}
	return false
}

// Sleep blocks the task for dt ticks.
func (t *Timer) Sleep(ctx *kernel.Context, dt uint32) error {
	if err := t.Arm(ctx, dt); err != nil {
		return err
	}
	for msg := range t.ch {
		if t.Fired(msg) {
			return nil
		}
	}
	return errors.New("time: reply endpoint closed")
}
