// Package bruteforce sweeps the code space of a fixed-code protocol.
package bruteforce

import (
	"errors"
	"fmt"
	"time"

	"multitool/sparkos/rf/encoder"
	"multitool/sparkos/rf/pulse"
)

const (
	// Repeats is how many times each candidate code is sent.
	Repeats = 3
	// InterRepeatGapUs separates the repeats of one code.
	InterRepeatGapUs = 5000
)

// ErrState reports an operation that is not valid in the current state.
var ErrState = errors.New("bruteforce: invalid state")

type State uint8

const (
	Idle State = iota
	Configuring
	Confirmed
	Running
	Paused
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configuring:
		return "configuring"
	case Confirmed:
		return "confirmed"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Sender transmits one pulse train with repeats.
type Sender interface {
	Transmit(train []pulse.Sample, repeats int, gapUs uint32) error
}

// Progress is a snapshot of a sweep.
type Progress struct {
	State    State
	Protocol *encoder.Protocol
	Bits     int
	Current  uint64
	Total    uint64
	// ETASeconds is the remaining time: the static estimate until a code has
	// been sent, then the measured rate projected over the remaining codes.
	ETASeconds uint64
	// EstimatedSeconds is the static estimate for the whole sweep.
	EstimatedSeconds uint64
	// ElapsedSeconds counts running time only; paused time is excluded.
	ElapsedSeconds uint64
	StartedAt      time.Time
}

// Scheduler drives one sweep at a time. The caller's loop decides the
// cadence by calling Tick; each Tick sends one code.
type Scheduler struct {
	tx  Sender
	now func() time.Time

	state     State
	proto     *encoder.Protocol
	bits      int
	total     uint64
	cursor    uint64
	perCodeUs uint64

	startedAt time.Time
	active    time.Duration
	runSince  time.Time

	train [encoder.MaxTrainLen]pulse.Sample
}

// New returns an idle scheduler. now defaults to time.Now.
func New(tx Sender, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{tx: tx, now: now}
}

func (s *Scheduler) State() State { return s.state }

// Configure selects the protocol and one of its nominal bit widths.
func (s *Scheduler) Configure(p *encoder.Protocol, bits int) error {
	switch s.state {
	case Idle, Configuring, Confirmed, Done:
	default:
		return fmt.Errorf("%w: configure while %s", ErrState, s.state)
	}
	if p == nil {
		return fmt.Errorf("bruteforce: no protocol")
	}
	if !p.Supports(bits) {
		return fmt.Errorf("bruteforce: %s does not use %d-bit codes", p.Name, bits)
	}
	s.reset()
	s.proto = p
	s.bits = bits
	s.state = Configuring
	return nil
}

// Confirm computes the code space and the per-code time estimate from an
// all-zero frame.
func (s *Scheduler) Confirm() error {
	if s.state != Configuring {
		return fmt.Errorf("%w: confirm while %s", ErrState, s.state)
	}
	s.total = uint64(1) << uint(s.bits)
	n := encoder.Encode(s.proto, 0, s.bits, s.train[:])
	s.perCodeUs = EstimatePerCode(s.train[:n])
	s.state = Confirmed
	return nil
}

// EstimatePerCode is the air time of one candidate: Repeats trains plus the
// gaps between them.
func EstimatePerCode(train []pulse.Sample) uint64 {
	return pulse.TotalMicros(train)*Repeats + InterRepeatGapUs*(Repeats-1)
}

// Start begins the sweep at code 0.
func (s *Scheduler) Start() error {
	if s.state != Confirmed {
		return fmt.Errorf("%w: start while %s", ErrState, s.state)
	}
	now := s.now()
	s.cursor = 0
	s.startedAt = now
	s.runSince = now
	s.active = 0
	s.state = Running
	return nil
}

// Tick sends the code under the cursor and advances it. It returns false
// without doing anything unless the sweep is running. A transmit error pauses
// the sweep at the failed code.
func (s *Scheduler) Tick() (bool, error) {
	if s.state != Running {
		return false, nil
	}

	n := encoder.Encode(s.proto, uint32(s.cursor), s.bits, s.train[:])
	if err := s.tx.Transmit(s.train[:n], Repeats, InterRepeatGapUs); err != nil {
		s.pauseAt(s.now())
		return false, fmt.Errorf("bruteforce: code %d: %w", s.cursor, err)
	}

	s.cursor++
	if s.cursor >= s.total {
		now := s.now()
		s.active += now.Sub(s.runSince)
		s.state = Done
	}
	return true, nil
}

// Pause freezes the cursor and the running-time clock.
func (s *Scheduler) Pause() error {
	if s.state != Running {
		return fmt.Errorf("%w: pause while %s", ErrState, s.state)
	}
	s.pauseAt(s.now())
	return nil
}

func (s *Scheduler) pauseAt(now time.Time) {
	s.active += now.Sub(s.runSince)
	s.state = Paused
}

// Resume continues from the paused cursor.
func (s *Scheduler) Resume() error {
	if s.state != Paused {
		return fmt.Errorf("%w: resume while %s", ErrState, s.state)
	}
	s.runSince = s.now()
	s.state = Running
	return nil
}

// Abort discards the session and returns to Idle.
func (s *Scheduler) Abort() {
	s.reset()
}

func (s *Scheduler) reset() {
	s.state = Idle
	s.proto = nil
	s.bits = 0
	s.total = 0
	s.cursor = 0
	s.perCodeUs = 0
	s.startedAt = time.Time{}
	s.runSince = time.Time{}
	s.active = 0
}

// Progress reports the cursor, the code space and the time estimates.
func (s *Scheduler) Progress() Progress {
	p := Progress{
		State:     s.state,
		Protocol:  s.proto,
		Bits:      s.bits,
		Current:   s.cursor,
		Total:     s.total,
		StartedAt: s.startedAt,
	}
	if s.total == 0 {
		return p
	}
	p.EstimatedSeconds = s.perCodeUs * s.total / 1_000_000

	elapsed := s.active
	if s.state == Running {
		elapsed += s.now().Sub(s.runSince)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedUs := uint64(elapsed / time.Microsecond)
	p.ElapsedSeconds = elapsedUs / 1_000_000

	remaining := s.total - s.cursor
	switch {
	case remaining == 0:
		p.ETASeconds = 0
	case s.cursor == 0:
		p.ETASeconds = s.perCodeUs * remaining / 1_000_000
	default:
		etaUs := elapsedUs/s.cursor*remaining + elapsedUs%s.cursor*remaining/s.cursor
		p.ETASeconds = etaUs / 1_000_000
	}
	return p
}
