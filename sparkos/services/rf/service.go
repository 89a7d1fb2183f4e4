// Package rf serves the Sub-GHz pulse core over IPC: capture on the RX pin,
// replay and bruteforce on the TX pin, the PWM jammer and preamble detection.
package rf

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"multitool/hal"
	logclient "multitool/sparkos/client/logger"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
	"multitool/sparkos/rf/analyzer"
	"multitool/sparkos/rf/bruteforce"
	"multitool/sparkos/rf/capture"
	"multitool/sparkos/rf/encoder"
	"multitool/sparkos/rf/pulse"
	"multitool/sparkos/rf/transmit"
)

const (
	DefaultMaxTxSamples = 4096
	DefaultRepeats      = 3
	DefaultGapUs        = 10_000
)

// Config selects the RF pins and limits.
type Config struct {
	// TXPin and RXPin are GPIO ids. TXPin is also the PWM id that counts as
	// "the TX pin" for jammer ownership.
	TXPin int
	RXPin int

	CaptureCapacity int
	MaxTxSamples    int

	// Now stamps detected codes and drives the bruteforce clock.
	Now func() time.Time
}

// Service owns every RF resource. All state is touched from Run only, except
// the capture buffer producer which runs in the RX interrupt.
type Service struct {
	ep     kernel.Capability
	logCap kernel.Capability

	gpio  hal.GPIO
	pwm   hal.PWM
	clock hal.Clock
	cfg   Config

	txPin hal.GPIOPin
	rxPin hal.GPIOInterruptPin

	buf   *capture.Buffer
	tx    *transmit.Transmitter
	jam   *transmit.Jammer
	brute *bruteforce.Scheduler
	det   *analyzer.Detector

	owner     proto.RFOwner
	capturing bool
	upload    *txUpload

	drainBuf []pulse.Sample
}

type txUpload struct {
	id      uint32
	total   int
	repeats int
	gapUs   uint32
	samples []pulse.Sample
}

func New(gpio hal.GPIO, pwm hal.PWM, clock hal.Clock, ep, logCap kernel.Capability, cfg Config) *Service {
	if cfg.CaptureCapacity <= 0 {
		cfg.CaptureCapacity = capture.DefaultCapacity
	}
	if cfg.MaxTxSamples <= 0 {
		cfg.MaxTxSamples = DefaultMaxTxSamples
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Service{
		ep:     ep,
		logCap: logCap,
		gpio:   gpio,
		pwm:    pwm,
		clock:  clock,
		cfg:    cfg,
		buf:    capture.New(cfg.CaptureCapacity),
		jam:    transmit.NewJammer(pwm),
		det:    analyzer.NewDetector(cfg.Now),
	}
	s.drainBuf = make([]pulse.Sample, s.buf.Cap())
	return s
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}
	s.initPins(ctx)
	defer s.shutdown(ctx)

	for {
		if s.brute != nil && s.brute.State() == bruteforce.Running {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.handle(ctx, msg)
			default:
				s.tickBruteforce(ctx)
			}
			continue
		}

		msg, ok := <-ch
		if !ok {
			return
		}
		s.handle(ctx, msg)
	}
}

func (s *Service) initPins(ctx *kernel.Context) {
	if s.gpio == nil {
		s.log(ctx, "rf: no gpio")
		return
	}

	if pin := s.gpio.Pin(s.cfg.TXPin); pin != nil {
		if err := pin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			s.log(ctx, "rf: tx pin %s: %v", pin.Name(), err)
		} else {
			_ = pin.Write(false)
			s.txPin = pin
			s.tx = transmit.New(pin, s.clock)
			s.brute = bruteforce.New(s.tx, s.cfg.Now)
		}
	}

	if pin, ok := s.gpio.Pin(s.cfg.RXPin).(hal.GPIOInterruptPin); ok && pin != nil {
		if err := pin.Configure(hal.GPIOModeInput, hal.GPIOPullNone); err != nil {
			s.log(ctx, "rf: rx pin %s: %v", pin.Name(), err)
		} else {
			s.rxPin = pin
		}
	}
}

func (s *Service) shutdown(ctx *kernel.Context) {
	s.stopCapture()
	if s.brute != nil {
		s.brute.Abort()
	}
	_ = s.jam.Stop()
	if s.txPin != nil {
		_ = s.txPin.Write(false)
	}
	s.owner = proto.RFOwnerNone
}

func (s *Service) handle(ctx *kernel.Context, msg kernel.Message) {
	switch proto.Kind(msg.Kind) {
	case proto.MsgRFStatus:
		s.handleStatus(ctx, msg)
	case proto.MsgRFCaptureStart:
		s.handleCaptureStart(ctx, msg)
	case proto.MsgRFCaptureStop:
		s.handleCaptureStop(ctx, msg)
	case proto.MsgRFDrain:
		s.handleDrain(ctx, msg)
	case proto.MsgRFTxOpen:
		s.handleTxOpen(ctx, msg)
	case proto.MsgRFTxChunk:
		s.handleTxChunk(ctx, msg)
	case proto.MsgRFTxCommit:
		s.handleTxCommit(ctx, msg)
	case proto.MsgRFTransmitCode:
		s.handleTransmitCode(ctx, msg)
	case proto.MsgRFBruteStart:
		s.handleBruteStart(ctx, msg)
	case proto.MsgRFBrutePause, proto.MsgRFBruteResume, proto.MsgRFBruteAbort:
		s.handleBruteControl(ctx, msg)
	case proto.MsgRFBruteProgress:
		s.handleBruteProgress(ctx, msg)
	case proto.MsgRFJamStart:
		s.handleJamStart(ctx, msg)
	case proto.MsgRFJamStop:
		s.handleJamStop(ctx, msg)
	case proto.MsgRFCodes:
		s.handleCodes(ctx, msg)
	case proto.MsgRFCodesClear:
		s.handleCodesClear(ctx, msg)
	}
}

func (s *Service) handleStatus(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFStatus, 0, "decode status")
		return
	}
	st := proto.RFStatus{
		Capturing: s.capturing,
		Jamming:   s.jam.Active(),
		Owner:     s.owner,
		Pending:   uint32(s.buf.Pending()),
		Dropped:   s.buf.Dropped(),
		Codes:     uint8(s.det.Len()),
		JamFreqHz: s.jam.Frequency(),
	}
	_ = s.send(ctx, msg.Cap, proto.MsgRFStatusResp, proto.RFStatusRespPayload(requestID, st))
}

func (s *Service) handleCaptureStart(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFCaptureStart, 0, "decode capture start")
		return
	}
	if s.rxPin == nil {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrHardware, proto.MsgRFCaptureStart, requestID, "no rx pin")
		return
	}

	// The new handler replaces any running one but ignores edges until the
	// buffer is reset. A failed attach leaves the previous session intact.
	buf, clock := s.buf, s.clock
	var armed atomic.Bool
	if err := s.rxPin.SetInterrupt(hal.GPIOEdgeBoth, func(level bool) {
		if armed.Load() {
			buf.OnEdge(clock.Micros(), level)
		}
	}); err != nil {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrHardware, proto.MsgRFCaptureStart, requestID, err.Error())
		return
	}
	s.buf.Reset()
	armed.Store(true)
	s.capturing = true
	s.log(ctx, "rf: capture started rx=%s", s.rxPin.Name())
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFCaptureStart)
}

func (s *Service) handleCaptureStop(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFCaptureStop, 0, "decode capture stop")
		return
	}
	if s.capturing {
		s.stopCapture()
		s.log(ctx, "rf: capture stopped pending=%d dropped=%d", s.buf.Pending(), s.buf.Dropped())
	}
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFCaptureStop)
}

// stopCapture detaches the interrupt before anything else; an edge already
// in flight completes as the last sample.
func (s *Service) stopCapture() {
	if !s.capturing || s.rxPin == nil {
		s.capturing = false
		return
	}
	_ = s.rxPin.SetInterrupt(hal.GPIOEdgeBoth, nil)
	s.capturing = false
}

func (s *Service) handleDrain(ctx *kernel.Context, msg kernel.Message) {
	requestID, max, ok := proto.DecodeRFDrainPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFDrain, 0, "decode drain")
		return
	}

	dst := s.drainBuf
	if max != 0 && int(max) < len(dst) {
		dst = dst[:max]
	}
	n := s.buf.Drain(dst)
	samples := dst[:n]

	if added := s.det.Scan(samples); added > 0 {
		s.log(ctx, "rf: %d preamble code(s) detected, %d stored", added, s.det.Len())
	}

	dropped := s.buf.Dropped()
	for {
		chunk := samples
		if len(chunk) > proto.RFDrainChunkSamples {
			chunk = chunk[:proto.RFDrainChunkSamples]
		}
		samples = samples[len(chunk):]
		done := len(samples) == 0
		if err := s.send(ctx, msg.Cap, proto.MsgRFDrainResp, proto.RFDrainRespPayload(requestID, done, dropped, chunk)); err != nil || done {
			return
		}
	}
}

func (s *Service) handleTxOpen(ctx *kernel.Context, msg kernel.Message) {
	requestID, total, repeats, gapUs, ok := proto.DecodeRFTxOpenPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTxOpen, 0, "decode tx open")
		return
	}
	if total == 0 {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTxOpen, requestID, "empty train")
		return
	}
	if int(total) > s.cfg.MaxTxSamples {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrOverflow, proto.MsgRFTxOpen, requestID, "train too long")
		return
	}
	if repeats == 0 {
		repeats = 1
	}
	s.upload = &txUpload{
		id:      requestID,
		total:   int(total),
		repeats: int(repeats),
		gapUs:   gapUs,
		samples: make([]pulse.Sample, 0, total),
	}
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFTxOpen)
}

func (s *Service) handleTxChunk(ctx *kernel.Context, msg kernel.Message) {
	up := s.upload
	if up == nil {
		return
	}
	requestID, samples, ok := proto.DecodeRFTxChunkPayload(msg.Payload(), up.samples)
	if !ok || requestID != up.id {
		return
	}
	if len(samples) > up.total {
		s.upload = nil
		_ = s.sendErr(ctx, msg.Cap, proto.ErrOverflow, proto.MsgRFTxChunk, requestID, "more samples than announced")
		return
	}
	up.samples = samples
}

func (s *Service) handleTxCommit(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTxCommit, 0, "decode tx commit")
		return
	}
	up := s.upload
	if up == nil || up.id != requestID {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrNotFound, proto.MsgRFTxCommit, requestID, "no upload")
		return
	}
	s.upload = nil
	if len(up.samples) != up.total {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTxCommit, requestID,
			fmt.Sprintf("got %d of %d samples", len(up.samples), up.total))
		return
	}

	if code, detail := s.replay(ctx, up.samples, up.repeats, up.gapUs); code != proto.ErrUnknown {
		_ = s.sendErr(ctx, msg.Cap, code, proto.MsgRFTxCommit, requestID, detail)
		return
	}
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFTxCommit)
}

func (s *Service) handleTransmitCode(ctx *kernel.Context, msg kernel.Message) {
	requestID, protocolID, bits, code, repeats, gapUs, ok := proto.DecodeRFTransmitCodePayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTransmitCode, 0, "decode transmit code")
		return
	}
	p, ok := encoder.ByID(protocolID)
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrNotFound, proto.MsgRFTransmitCode, requestID, "protocol")
		return
	}
	train := encoder.EncodeTrain(p, code, int(bits))
	if len(train) == 0 {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFTransmitCode, requestID, "bits")
		return
	}
	if repeats == 0 {
		repeats = DefaultRepeats
	}

	if ec, detail := s.replay(ctx, train, int(repeats), gapUs); ec != proto.ErrUnknown {
		_ = s.sendErr(ctx, msg.Cap, ec, proto.MsgRFTransmitCode, requestID, detail)
		return
	}
	s.log(ctx, "rf: sent %s %d-bit code %X x%d", p.Name, bits, code, repeats)
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFTransmitCode)
}

// replay drives the TX pin for a single replay. It returns ErrUnknown on
// success.
func (s *Service) replay(ctx *kernel.Context, train []pulse.Sample, repeats int, gapUs uint32) (proto.ErrCode, string) {
	if s.tx == nil {
		return proto.ErrHardware, "no tx pin"
	}
	if s.owner != proto.RFOwnerNone {
		return proto.ErrBusy, "tx pin owned by " + s.owner.String()
	}
	s.owner = proto.RFOwnerReplay
	err := s.tx.Transmit(train, repeats, gapUs)
	s.owner = proto.RFOwnerNone
	if err != nil {
		s.log(ctx, "rf: transmit: %v", err)
		return proto.ErrHardware, err.Error()
	}
	return proto.ErrUnknown, ""
}

func (s *Service) handleBruteStart(ctx *kernel.Context, msg kernel.Message) {
	requestID, protocolID, bits, ok := proto.DecodeRFBruteStartPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFBruteStart, 0, "decode brute start")
		return
	}
	if s.brute == nil {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrHardware, proto.MsgRFBruteStart, requestID, "no tx pin")
		return
	}
	p, ok := encoder.ByID(protocolID)
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrNotFound, proto.MsgRFBruteStart, requestID, "protocol")
		return
	}
	if s.owner != proto.RFOwnerNone {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBusy, proto.MsgRFBruteStart, requestID, "tx pin owned by "+s.owner.String())
		return
	}

	err := s.brute.Configure(p, int(bits))
	if err == nil {
		err = s.brute.Confirm()
	}
	if err == nil {
		err = s.brute.Start()
	}
	if err != nil {
		s.brute.Abort()
		_ = s.sendErr(ctx, msg.Cap, brokenState(err), proto.MsgRFBruteStart, requestID, err.Error())
		return
	}
	s.owner = proto.RFOwnerBruteforce

	pr := s.brute.Progress()
	s.log(ctx, "rf: bruteforce %s %d-bit, %d codes, ~%ds", p.Name, bits, pr.Total, pr.EstimatedSeconds)
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFBruteStart)
}

func (s *Service) handleBruteControl(ctx *kernel.Context, msg kernel.Message) {
	kind := proto.Kind(msg.Kind)
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, kind, 0, "decode")
		return
	}
	if s.brute == nil {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrHardware, kind, requestID, "no tx pin")
		return
	}

	var err error
	switch kind {
	case proto.MsgRFBrutePause:
		err = s.brute.Pause()
	case proto.MsgRFBruteResume:
		err = s.brute.Resume()
	case proto.MsgRFBruteAbort:
		s.brute.Abort()
		if s.owner == proto.RFOwnerBruteforce {
			s.owner = proto.RFOwnerNone
		}
	}
	if err != nil {
		_ = s.sendErr(ctx, msg.Cap, brokenState(err), kind, requestID, err.Error())
		return
	}
	s.log(ctx, "rf: bruteforce %s", s.brute.State())
	_ = s.ack(ctx, msg.Cap, requestID, kind)
}

func (s *Service) tickBruteforce(ctx *kernel.Context) {
	if _, err := s.brute.Tick(); err != nil {
		s.log(ctx, "rf: bruteforce paused: %v", err)
	}
	if s.brute.State() == bruteforce.Done {
		if s.owner == proto.RFOwnerBruteforce {
			s.owner = proto.RFOwnerNone
		}
		pr := s.brute.Progress()
		s.log(ctx, "rf: bruteforce done, %d codes in %ds", pr.Current, pr.ElapsedSeconds)
	}
}

func (s *Service) handleBruteProgress(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFBruteProgress, 0, "decode progress")
		return
	}
	var out proto.RFProgress
	if s.brute != nil {
		pr := s.brute.Progress()
		out = proto.RFProgress{
			State:            uint8(pr.State),
			Bits:             uint8(pr.Bits),
			Current:          pr.Current,
			Total:            pr.Total,
			ETASeconds:       pr.ETASeconds,
			EstimatedSeconds: pr.EstimatedSeconds,
			ElapsedSeconds:   pr.ElapsedSeconds,
		}
		if pr.Protocol != nil {
			out.ProtocolID = pr.Protocol.ID
		}
	}
	_ = s.send(ctx, msg.Cap, proto.MsgRFBruteProgressResp, proto.RFBruteProgressRespPayload(requestID, out))
}

func (s *Service) handleJamStart(ctx *kernel.Context, msg kernel.Message) {
	requestID, pin, freqHz, ok := proto.DecodeRFJamStartPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFJamStart, 0, "decode jam start")
		return
	}
	if s.jam.Active() {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBusy, proto.MsgRFJamStart, requestID, "jammer active")
		return
	}
	onTX := int(pin) == s.cfg.TXPin
	if onTX && s.owner != proto.RFOwnerNone {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBusy, proto.MsgRFJamStart, requestID, "tx pin owned by "+s.owner.String())
		return
	}
	if freqHz == 0 {
		freqHz = transmit.DefaultJamFrequency
	}
	if err := s.jam.Start(int(pin), freqHz); err != nil {
		code := proto.ErrHardware
		if errors.Is(err, hal.ErrBusy) {
			code = proto.ErrBusy
		}
		_ = s.sendErr(ctx, msg.Cap, code, proto.MsgRFJamStart, requestID, err.Error())
		return
	}
	if onTX {
		s.owner = proto.RFOwnerJammer
	}
	s.log(ctx, "rf: jammer on pin=%d freq=%dHz", pin, freqHz)
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFJamStart)
}

func (s *Service) handleJamStop(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFJamStop, 0, "decode jam stop")
		return
	}
	wasActive := s.jam.Active()
	err := s.jam.Stop()
	if s.owner == proto.RFOwnerJammer {
		s.owner = proto.RFOwnerNone
		if s.txPin != nil {
			_ = s.txPin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone)
			_ = s.txPin.Write(false)
		}
	}
	if err != nil {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrHardware, proto.MsgRFJamStop, requestID, err.Error())
		return
	}
	if wasActive {
		s.log(ctx, "rf: jammer off")
	}
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFJamStop)
}

func (s *Service) handleCodes(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFCodes, 0, "decode codes")
		return
	}
	for _, c := range s.det.Codes() {
		rc := proto.RFCode{
			Data:         c.Data,
			Bits:         uint8(c.Bits),
			Keeloq:       c.Keeloq,
			CapturedAtMs: c.CapturedAt.UnixMilli(),
		}
		if err := s.send(ctx, msg.Cap, proto.MsgRFCodesResp, proto.RFCodesRespPayload(requestID, false, rc)); err != nil {
			return
		}
	}
	_ = s.send(ctx, msg.Cap, proto.MsgRFCodesResp, proto.RFCodesRespPayload(requestID, true, proto.RFCode{}))
}

func (s *Service) handleCodesClear(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeRFRequestPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, msg.Cap, proto.ErrBadMessage, proto.MsgRFCodesClear, 0, "decode codes clear")
		return
	}
	s.det.Reset()
	_ = s.ack(ctx, msg.Cap, requestID, proto.MsgRFCodesClear)
}

func brokenState(err error) proto.ErrCode {
	if errors.Is(err, bruteforce.ErrState) {
		return proto.ErrBusy
	}
	return proto.ErrBadMessage
}

func (s *Service) ack(ctx *kernel.Context, to kernel.Capability, requestID uint32, ref proto.Kind) error {
	return s.send(ctx, to, proto.MsgRFAck, proto.RFAckPayload(requestID, ref))
}

func (s *Service) send(ctx *kernel.Context, to kernel.Capability, kind proto.Kind, payload []byte) error {
	if !to.Valid() {
		return nil
	}
	for {
		res := ctx.SendToCapResult(to, uint16(kind), payload, kernel.Capability{})
		switch res {
		case kernel.SendOK:
			return nil
		case kernel.SendErrQueueFull:
			ctx.BlockOnTick()
		default:
			return fmt.Errorf("rf send %s: %s", kind, res)
		}
	}
}

func (s *Service) sendErr(
	ctx *kernel.Context,
	to kernel.Capability,
	code proto.ErrCode,
	ref proto.Kind,
	requestID uint32,
	detail string,
) error {
	if len(detail) > 96 {
		detail = detail[:96]
	}
	d := proto.ErrorDetailWithRequestID(requestID, []byte(detail))
	return s.send(ctx, to, proto.MsgError, proto.ErrorPayload(code, ref, d))
}

func (s *Service) log(ctx *kernel.Context, format string, args ...any) {
	_ = logclient.Logf(ctx, s.logCap, format, args...)
}
