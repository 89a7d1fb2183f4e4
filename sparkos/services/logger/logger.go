// Package logger forwards MsgLogLine payloads to the platform logger.
package logger

import (
	"multitool/hal"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

// Service writes one platform log line per MsgLogLine. Trailing line breaks
// are stripped and other control bytes become '.', so a stray file name or
// payload cannot split or garble the UART stream.
type Service struct {
	log  hal.Logger
	ep   kernel.Capability
	line [kernel.MaxMessageBytes]byte
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}
	for msg := range ch {
		if s.log == nil || proto.Kind(msg.Kind) != proto.MsgLogLine {
			continue
		}
		if line := sanitize(s.line[:0], msg.Payload()); len(line) > 0 {
			s.log.WriteLineBytes(line)
		}
	}
}

func sanitize(dst, b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	for _, c := range b {
		if c < 0x20 && c != '\t' || c == 0x7f {
			c = '.'
		}
		dst = append(dst, c)
	}
	return dst
}
