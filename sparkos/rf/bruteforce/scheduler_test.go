package bruteforce

import (
	"errors"
	"testing"
	"time"

	"multitool/sparkos/rf/encoder"
	"multitool/sparkos/rf/pulse"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordSender struct {
	clock   *fakeClock
	perSend time.Duration
	trains  [][]pulse.Sample
	fail    error
}

func (r *recordSender) Transmit(train []pulse.Sample, repeats int, gapUs uint32) error {
	if r.fail != nil {
		return r.fail
	}
	if repeats != Repeats || gapUs != InterRepeatGapUs {
		return errors.New("unexpected repeat/gap")
	}
	r.trains = append(r.trains, append([]pulse.Sample(nil), train...))
	if r.clock != nil {
		r.clock.advance(r.perSend)
	}
	return nil
}

func newTestScheduler(perSend time.Duration) (*Scheduler, *recordSender, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tx := &recordSender{clock: clock, perSend: perSend}
	return New(tx, clock.now), tx, clock
}

func confirmed(t *testing.T, s *Scheduler, p *encoder.Protocol, bits int) {
	t.Helper()
	if err := s.Configure(p, bits); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestCodeSpaceSize(t *testing.T) {
	cases := []struct {
		bits  int
		total uint64
	}{
		{10, 1024},
		{12, 4096},
		{24, 16777216},
	}
	for _, tc := range cases {
		s, _, _ := newTestScheduler(0)
		confirmed(t, s, &encoder.PT2262, tc.bits)
		if got := s.Progress().Total; got != tc.total {
			t.Fatalf("bits=%d: expected %d codes, got %d", tc.bits, tc.total, got)
		}
	}
}

func TestEstimateUses64Bit(t *testing.T) {
	s, _, _ := newTestScheduler(0)
	confirmed(t, s, &encoder.PT2262, 24)

	// All-zero 24-bit PT2262 frame: 48 * (350+1050) + 350 + 10850 = 78400us.
	perCode := uint64(78400*Repeats + InterRepeatGapUs*(Repeats-1))
	want := perCode * 16777216 / 1_000_000
	p := s.Progress()
	if p.EstimatedSeconds != want {
		t.Fatalf("expected %d s, got %d s", want, p.EstimatedSeconds)
	}
	if p.EstimatedSeconds <= (1<<32-1)/1_000_000 {
		t.Fatal("estimate should exceed what a 32-bit microsecond product can hold")
	}
	if p.ETASeconds != want {
		t.Fatalf("expected ETA before start to equal the estimate, got %d", p.ETASeconds)
	}
}

func TestSweepSendsEveryCode(t *testing.T) {
	s, tx, _ := newTestScheduler(time.Millisecond)
	confirmed(t, s, &encoder.CAME, 12)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 4096; i++ {
		sent, err := s.Tick()
		if err != nil || !sent {
			t.Fatalf("Tick %d: sent=%v err=%v", i, sent, err)
		}
	}
	if s.State() != Done {
		t.Fatalf("expected done, got %s", s.State())
	}
	if sent, _ := s.Tick(); sent {
		t.Fatal("Tick after done should not send")
	}
	if len(tx.trains) != 4096 {
		t.Fatalf("expected 4096 transmissions, got %d", len(tx.trains))
	}

	want := encoder.EncodeTrain(&encoder.CAME, 4095, 12)
	last := tx.trains[len(tx.trains)-1]
	if len(last) != len(want) {
		t.Fatalf("unexpected last train length %d", len(last))
	}
	for i := range want {
		if last[i] != want[i] {
			t.Fatalf("last train differs at %d", i)
		}
	}

	p := s.Progress()
	if p.Current != 4096 || p.ETASeconds != 0 {
		t.Fatalf("unexpected final progress %+v", p)
	}
}

func TestPauseResumeKeepsCursorAndExcludesPausedTime(t *testing.T) {
	s, _, clock := newTestScheduler(100 * time.Millisecond)
	confirmed(t, s, &encoder.PT2262, 10)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 10; i++ {
		if _, err := s.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if sent, _ := s.Tick(); sent {
		t.Fatal("Tick while paused should not send")
	}

	before := s.Progress()
	clock.advance(time.Hour)
	after := s.Progress()
	if before.ETASeconds != after.ETASeconds || after.ElapsedSeconds != 1 {
		t.Fatalf("paused time leaked into estimates: before=%+v after=%+v", before, after)
	}

	// 10 codes in 1s -> 0.1s per code over 1014 remaining codes.
	if after.ETASeconds != 101 {
		t.Fatalf("expected ETA 101s, got %d", after.ETASeconds)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if _, err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := s.Progress().Current; got != 11 {
		t.Fatalf("expected cursor 11 after resume, got %d", got)
	}
}

func TestAbortReturnsToIdle(t *testing.T) {
	s, _, _ := newTestScheduler(0)
	confirmed(t, s, &encoder.PT2262, 12)
	_ = s.Start()
	_, _ = s.Tick()
	_ = s.Pause()

	s.Abort()
	p := s.Progress()
	if p.State != Idle || p.Current != 0 || p.Total != 0 || p.Protocol != nil {
		t.Fatalf("expected cleared session, got %+v", p)
	}
	if err := s.Resume(); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState resuming after abort, got %v", err)
	}
}

func TestStateGuards(t *testing.T) {
	s, _, _ := newTestScheduler(0)
	if err := s.Start(); !errors.Is(err, ErrState) {
		t.Fatalf("Start from idle: %v", err)
	}
	if err := s.Confirm(); !errors.Is(err, ErrState) {
		t.Fatalf("Confirm from idle: %v", err)
	}
	if err := s.Pause(); !errors.Is(err, ErrState) {
		t.Fatalf("Pause from idle: %v", err)
	}
	if err := s.Configure(&encoder.CAME, 24); err == nil {
		t.Fatal("expected CAME/24 to be rejected")
	}
	if s.State() != Idle {
		t.Fatalf("failed configure changed state to %s", s.State())
	}

	confirmed(t, s, &encoder.NiceFLO, 12)
	_ = s.Start()
	if err := s.Configure(&encoder.CAME, 12); !errors.Is(err, ErrState) {
		t.Fatalf("Configure while running: %v", err)
	}
}

func TestTransmitErrorPauses(t *testing.T) {
	s, tx, _ := newTestScheduler(0)
	confirmed(t, s, &encoder.CAME, 12)
	_ = s.Start()
	tx.fail = errors.New("pin fault")

	if sent, err := s.Tick(); sent || err == nil {
		t.Fatalf("expected failed tick, sent=%v err=%v", sent, err)
	}
	if s.State() != Paused || s.Progress().Current != 0 {
		t.Fatalf("expected paused at code 0, got %s at %d", s.State(), s.Progress().Current)
	}
}
