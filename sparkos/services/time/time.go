package timesvc

import (
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

const maxSleepers = 32

type sleeper struct {
	inUse bool
	due   uint64
	id    uint32
	reply kernel.Capability
}

// Service answers MsgSleep with MsgWake once the requested number of ticks
// has elapsed. Ticks arrive as absolute sequence numbers; gaps are fine.
type Service struct {
	ticks <-chan uint64
	ep    kernel.Capability

	now      uint64
	sleepers [maxSleepers]sleeper
}

func New(ticks <-chan uint64, ep kernel.Capability) *Service {
	return &Service{ticks: ticks, ep: ep}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, msg)
		case seq, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				continue
			}
			if seq > s.now {
				s.now = seq
			}
			s.wakeReady(ctx)
		}
	}
}

func (s *Service) handle(ctx *kernel.Context, msg kernel.Message) {
	if proto.Kind(msg.Kind) != proto.MsgSleep || !msg.Cap.Valid() {
		return
	}

	requestID, dt, ok := proto.DecodeSleepPayload(msg.Payload())
	if !ok {
		payload := proto.ErrorPayload(
			proto.ErrBadMessage,
			proto.MsgSleep,
			proto.ErrorDetailWithRequestID(0, nil),
		)
		_ = ctx.SendToCapRetry(msg.Cap, uint16(proto.MsgError), payload, kernel.Capability{}, 1)
		return
	}
	if dt == 0 {
		_ = ctx.SendToCapRetry(msg.Cap, uint16(proto.MsgWake), proto.WakePayload(requestID), kernel.Capability{}, 1)
		return
	}
	if !s.schedule(s.now+uint64(dt), requestID, msg.Cap) {
		payload := proto.ErrorPayload(
			proto.ErrOverflow,
			proto.MsgSleep,
			proto.ErrorDetailWithRequestID(requestID, nil),
		)
		_ = ctx.SendToCapRetry(msg.Cap, uint16(proto.MsgError), payload, kernel.Capability{}, 1)
	}
}

func (s *Service) schedule(due uint64, requestID uint32, reply kernel.Capability) bool {
	for i := range s.sleepers {
		if s.sleepers[i].inUse {
			continue
		}
		s.sleepers[i] = sleeper{inUse: true, due: due, id: requestID, reply: reply}
		return true
	}
	return false
}

func (s *Service) wakeReady(ctx *kernel.Context) {
	for i := range s.sleepers {
		sl := &s.sleepers[i]
		if !sl.inUse || sl.due > s.now {
			continue
		}
		res := ctx.SendToCapResult(sl.reply, uint16(proto.MsgWake), proto.WakePayload(sl.id), kernel.Capability{})
		if res == kernel.SendErrQueueFull {
			continue
		}
		*sl = sleeper{}
	}
}
