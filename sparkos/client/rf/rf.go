// Package rf is the client side of the RF service.
package rf

import (
	"errors"
	"fmt"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
	"multitool/sparkos/rf/pulse"
)

// Error is a MsgError reply from the RF service.
type Error struct {
	Op     string
	Code   proto.ErrCode
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rf %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("rf %s: %s: %s", e.Op, e.Code, e.Detail)
}

// IsBusy reports whether err means the TX pin or jammer is already in use.
func IsBusy(err error) bool {
	return hasCode(err, proto.ErrBusy)
}

// IsHardware reports whether err is a pin or PWM failure.
func IsHardware(err error) bool {
	return hasCode(err, proto.ErrHardware)
}

func hasCode(err error, code proto.ErrCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

var errClosed = errors.New("rf client: reply endpoint closed")

type Client struct {
	rfCap kernel.Capability

	replyCapXfer kernel.Capability
	replyCh      <-chan kernel.Message

	nextRequestID uint32
}

func New(rfCap kernel.Capability) *Client {
	return &Client{rfCap: rfCap, nextRequestID: 1}
}

func (c *Client) ensureReply(ctx *kernel.Context) error {
	if c.replyCh != nil {
		return nil
	}

	ep := ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !ep.Valid() {
		return errors.New("rf client: failed to allocate reply endpoint")
	}
	ch, ok := ctx.RecvChan(ep.Restrict(kernel.RightRecv))
	if !ok {
		return errors.New("rf client: failed to receive from reply endpoint")
	}

	c.replyCapXfer = ep.Restrict(kernel.RightSend)
	c.replyCh = ch
	return nil
}

func (c *Client) nextID() uint32 {
	id := c.nextRequestID
	c.nextRequestID++
	if c.nextRequestID == 0 {
		c.nextRequestID = 1
	}
	return id
}

func (c *Client) send(ctx *kernel.Context, kind proto.Kind, payload []byte) error {
	for {
		res := ctx.SendToCapResult(c.rfCap, uint16(kind), payload, c.replyCapXfer)
		switch res {
		case kernel.SendOK:
			return nil
		case kernel.SendErrQueueFull:
			ctx.BlockOnTick()
		default:
			return fmt.Errorf("rf client send %s: %s", kind, res)
		}
	}
}

// await feeds replies of kind want to handle until it reports done. An
// error reply for reqID ends the call; replies for other requests are
// dropped.
func (c *Client) await(op string, want proto.Kind, reqID uint32, handle func([]byte) bool) error {
	for {
		msg, ok := <-c.replyCh
		if !ok {
			return errClosed
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgError:
			code, _, detail, ok := proto.DecodeErrorPayload(msg.Payload())
			if !ok {
				continue
			}
			gotID, rest, ok := proto.DecodeErrorDetailWithRequestID(detail)
			if !ok || gotID != reqID {
				continue
			}
			return &Error{Op: op, Code: code, Detail: string(rest)}
		case want:
			if handle(msg.Payload()) {
				return nil
			}
		}
	}
}

// call sends a request answered by a single MsgRFAck.
func (c *Client) call(ctx *kernel.Context, op string, kind proto.Kind, payload []byte, reqID uint32) error {
	if err := c.send(ctx, kind, payload); err != nil {
		return err
	}
	return c.await(op, proto.MsgRFAck, reqID, func(p []byte) bool {
		gotID, ref, ok := proto.DecodeRFAckPayload(p)
		return ok && gotID == reqID && ref == kind
	})
}

func (c *Client) simple(ctx *kernel.Context, op string, kind proto.Kind) error {
	if err := c.ensureReply(ctx); err != nil {
		return err
	}
	reqID := c.nextID()
	return c.call(ctx, op, kind, proto.RFRequestPayload(reqID), reqID)
}

func (c *Client) Status(ctx *kernel.Context) (proto.RFStatus, error) {
	if err := c.ensureReply(ctx); err != nil {
		return proto.RFStatus{}, err
	}
	reqID := c.nextID()
	if err := c.send(ctx, proto.MsgRFStatus, proto.RFRequestPayload(reqID)); err != nil {
		return proto.RFStatus{}, err
	}
	var st proto.RFStatus
	err := c.await("status", proto.MsgRFStatusResp, reqID, func(p []byte) bool {
		gotID, s, ok := proto.DecodeRFStatusRespPayload(p)
		if !ok || gotID != reqID {
			return false
		}
		st = s
		return true
	})
	return st, err
}

// StartCapture resets the capture buffer and attaches the RX interrupt.
func (c *Client) StartCapture(ctx *kernel.Context) error {
	return c.simple(ctx, "capture start", proto.MsgRFCaptureStart)
}

func (c *Client) StopCapture(ctx *kernel.Context) error {
	return c.simple(ctx, "capture stop", proto.MsgRFCaptureStop)
}

// Drain moves up to max pending samples (0 for all) out of the capture
// buffer and appends them to dst. It also returns the session's drop count.
func (c *Client) Drain(ctx *kernel.Context, max uint16, dst []pulse.Sample) ([]pulse.Sample, uint32, error) {
	if err := c.ensureReply(ctx); err != nil {
		return dst, 0, err
	}
	reqID := c.nextID()
	if err := c.send(ctx, proto.MsgRFDrain, proto.RFDrainPayload(reqID, max)); err != nil {
		return dst, 0, err
	}
	var dropped uint32
	err := c.await("drain", proto.MsgRFDrainResp, reqID, func(p []byte) bool {
		gotID, done, d, out, ok := proto.DecodeRFDrainRespPayload(p, dst)
		if !ok || gotID != reqID {
			return false
		}
		dst = out
		dropped = d
		return done
	})
	return dst, dropped, err
}

// Transmit uploads train and replays it repeats times with gapUs of idle
// between repetitions. It returns once the service finished transmitting.
func (c *Client) Transmit(ctx *kernel.Context, train []pulse.Sample, repeats int, gapUs uint32) error {
	if len(train) == 0 || len(train) > 0xffff {
		return fmt.Errorf("rf transmit: train of %d samples", len(train))
	}
	if repeats < 1 || repeats > 0xffff {
		return fmt.Errorf("rf transmit: %d repeats", repeats)
	}
	if err := c.ensureReply(ctx); err != nil {
		return err
	}

	reqID := c.nextID()
	open := proto.RFTxOpenPayload(reqID, uint16(len(train)), uint16(repeats), gapUs)
	if err := c.call(ctx, "transmit", proto.MsgRFTxOpen, open, reqID); err != nil {
		return err
	}
	for rest := train; len(rest) > 0; {
		chunk := rest
		if len(chunk) > proto.RFTxChunkSamples {
			chunk = chunk[:proto.RFTxChunkSamples]
		}
		if err := c.send(ctx, proto.MsgRFTxChunk, proto.RFTxChunkPayload(reqID, chunk)); err != nil {
			return err
		}
		rest = rest[len(chunk):]
	}
	return c.call(ctx, "transmit", proto.MsgRFTxCommit, proto.RFRequestPayload(reqID), reqID)
}

// TransmitCode encodes code with the protocol descriptor protocolID on the
// service side and sends it.
func (c *Client) TransmitCode(ctx *kernel.Context, protocolID uint8, bits int, code uint32, repeats int, gapUs uint32) error {
	if bits < 1 || bits > 0xff || repeats < 0 || repeats > 0xffff {
		return fmt.Errorf("rf transmit code: bits=%d repeats=%d", bits, repeats)
	}
	if err := c.ensureReply(ctx); err != nil {
		return err
	}
	reqID := c.nextID()
	payload := proto.RFTransmitCodePayload(reqID, protocolID, uint8(bits), code, uint16(repeats), gapUs)
	return c.call(ctx, "transmit code", proto.MsgRFTransmitCode, payload, reqID)
}

// StartBruteforce configures, confirms and starts a sweep in one step.
func (c *Client) StartBruteforce(ctx *kernel.Context, protocolID uint8, bits int) error {
	if bits < 1 || bits > 0xff {
		return fmt.Errorf("rf bruteforce: bits=%d", bits)
	}
	if err := c.ensureReply(ctx); err != nil {
		return err
	}
	reqID := c.nextID()
	return c.call(ctx, "bruteforce start", proto.MsgRFBruteStart, proto.RFBruteStartPayload(reqID, protocolID, uint8(bits)), reqID)
}

func (c *Client) PauseBruteforce(ctx *kernel.Context) error {
	return c.simple(ctx, "bruteforce pause", proto.MsgRFBrutePause)
}

func (c *Client) ResumeBruteforce(ctx *kernel.Context) error {
	return c.simple(ctx, "bruteforce resume", proto.MsgRFBruteResume)
}

func (c *Client) AbortBruteforce(ctx *kernel.Context) error {
	return c.simple(ctx, "bruteforce abort", proto.MsgRFBruteAbort)
}

func (c *Client) Progress(ctx *kernel.Context) (proto.RFProgress, error) {
	if err := c.ensureReply(ctx); err != nil {
		return proto.RFProgress{}, err
	}
	reqID := c.nextID()
	if err := c.send(ctx, proto.MsgRFBruteProgress, proto.RFRequestPayload(reqID)); err != nil {
		return proto.RFProgress{}, err
	}
	var out proto.RFProgress
	err := c.await("bruteforce progress", proto.MsgRFBruteProgressResp, reqID, func(p []byte) bool {
		gotID, pr, ok := proto.DecodeRFBruteProgressRespPayload(p)
		if !ok || gotID != reqID {
			return false
		}
		out = pr
		return true
	})
	return out, err
}

// StartJammer starts the square wave on pin. freqHz 0 selects the
// service default.
func (c *Client) StartJammer(ctx *kernel.Context, pin int, freqHz uint32) error {
	if pin < 0 || pin > 0xff {
		return fmt.Errorf("rf jammer: pin %d", pin)
	}
	if err := c.ensureReply(ctx); err != nil {
		return err
	}
	reqID := c.nextID()
	return c.call(ctx, "jammer start", proto.MsgRFJamStart, proto.RFJamStartPayload(reqID, uint8(pin), freqHz), reqID)
}

func (c *Client) StopJammer(ctx *kernel.Context) error {
	return c.simple(ctx, "jammer stop", proto.MsgRFJamStop)
}

// Codes returns the preamble codes detected so far, oldest first.
func (c *Client) Codes(ctx *kernel.Context) ([]proto.RFCode, error) {
	if err := c.ensureReply(ctx); err != nil {
		return nil, err
	}
	reqID := c.nextID()
	if err := c.send(ctx, proto.MsgRFCodes, proto.RFRequestPayload(reqID)); err != nil {
		return nil, err
	}
	var out []proto.RFCode
	err := c.await("codes", proto.MsgRFCodesResp, reqID, func(p []byte) bool {
		gotID, done, code, ok := proto.DecodeRFCodesRespPayload(p)
		if !ok || gotID != reqID {
			return false
		}
		if done {
			return true
		}
		out = append(out, code)
		return false
	})
	return out, err
}

func (c *Client) ClearCodes(ctx *kernel.Context) error {
	return c.simple(ctx, "codes clear", proto.MsgRFCodesClear)
}
