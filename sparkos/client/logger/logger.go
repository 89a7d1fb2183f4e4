package logger

import (
	"fmt"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

// Log sends a log line to the logger service.
//
// The call is best-effort: it may drop on queue full.
func Log(ctx *kernel.Context, logCap kernel.Capability, line string) kernel.SendResult {
	if ctx == nil || !logCap.Valid() {
		return kernel.SendErrInvalidToCap
	}
	b := []byte(line)
	if len(b) > kernel.MaxMessageBytes {
		b = b[:kernel.MaxMessageBytes]
	}
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(b), kernel.Capability{})
}

// Logf formats and sends a log line, retrying a few ticks while the logger
// queue is full.
func Logf(ctx *kernel.Context, logCap kernel.Capability, format string, args ...any) kernel.SendResult {
	if ctx == nil || !logCap.Valid() {
		return kernel.SendErrInvalidToCap
	}
	b := []byte(fmt.Sprintf(format, args...))
	if len(b) > kernel.MaxMessageBytes {
		b = b[:kernel.MaxMessageBytes]
	}
	return ctx.SendToCapRetry(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(b), kernel.Capability{}, 3)
}
