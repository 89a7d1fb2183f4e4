package transmit

import (
	"errors"
	"testing"

	"multitool/hal"
	"multitool/sparkos/rf/pulse"
)

// fakeClock advances only when waited on, and records level changes with
// their timestamps through the pin.
type fakeClock struct {
	now    uint64
	sleeps []uint64
}

func (c *fakeClock) Micros() uint64 { return c.now }

func (c *fakeClock) WaitUntil(us uint64) {
	if us > c.now {
		c.now = us
	}
}

func (c *fakeClock) SleepUntil(us uint64) {
	c.sleeps = append(c.sleeps, us)
	c.WaitUntil(us)
}

type edge struct {
	at    uint64
	level bool
}

type recordPin struct {
	clock  *fakeClock
	edges  []edge
	failAt int
	writes int
}

func (p *recordPin) Write(level bool) error {
	p.writes++
	if p.failAt > 0 && p.writes == p.failAt {
		return errors.New("pin fault")
	}
	p.edges = append(p.edges, edge{at: p.clock.now, level: level})
	return nil
}

func TestTransmitTiming(t *testing.T) {
	clock := &fakeClock{now: 1000}
	pin := &recordPin{clock: clock}
	tx := New(pin, clock)

	train := []pulse.Sample{320, -9920, 640, -320}
	if err := tx.Transmit(train, 2, 5000); err != nil {
		t.Fatalf("Transmit: %v", err)
	}

	want := []edge{
		{1000, true}, {1320, false}, {11240, true}, {11880, false}, {12200, false},
		{17200, true}, {17520, false}, {27440, true}, {28080, false}, {28400, false},
	}
	if len(pin.edges) != len(want) {
		t.Fatalf("expected %d writes, got %d: %v", len(want), len(pin.edges), pin.edges)
	}
	for i := range want {
		if pin.edges[i] != want[i] {
			t.Fatalf("write %d: expected %+v, got %+v", i, want[i], pin.edges[i])
		}
	}
	if got := Duration(train, 2, 5000); got != 28400-1000 {
		t.Fatalf("Duration = %d, want %d", got, 28400-1000)
	}
}

func TestTransmitSleepsOnlyBetweenRepeats(t *testing.T) {
	clock := &fakeClock{}
	pin := &recordPin{clock: clock}
	// 25.2ms sync low must be held by spinning, not sleeping.
	train := []pulse.Sample{700, -25200, 1400, -700}
	if err := New(pin, clock).Transmit(train, 3, 4000); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	want := []uint64{28000 + 4000, 2*28000 + 2*4000}
	if len(clock.sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), clock.sleeps)
	}
	for i := range want {
		if clock.sleeps[i] != want[i] {
			t.Fatalf("sleep %d: expected deadline %d, got %d", i, want[i], clock.sleeps[i])
		}
	}
}

func TestTransmitNoGapAfterLastRepeat(t *testing.T) {
	clock := &fakeClock{}
	pin := &recordPin{clock: clock}
	if err := New(pin, clock).Transmit([]pulse.Sample{100, -100}, 1, 50_000); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	if clock.now != 200 {
		t.Fatalf("expected transmit to end at 200us, ended at %d", clock.now)
	}
	if last := pin.edges[len(pin.edges)-1]; last.level {
		t.Fatal("expected pin LOW after transmit")
	}
}

func TestTransmitEmpty(t *testing.T) {
	clock := &fakeClock{}
	pin := &recordPin{clock: clock}
	tx := New(pin, clock)
	if err := tx.Transmit(nil, 3, 10); err != nil {
		t.Fatalf("Transmit(nil): %v", err)
	}
	if err := tx.Transmit([]pulse.Sample{100}, 0, 10); err != nil {
		t.Fatalf("Transmit(repeats=0): %v", err)
	}
	if len(pin.edges) != 0 {
		t.Fatalf("expected no pin writes, got %d", len(pin.edges))
	}
}

func TestTransmitPinFaultLeavesPinLow(t *testing.T) {
	clock := &fakeClock{}
	pin := &recordPin{clock: clock, failAt: 3}
	err := New(pin, clock).Transmit([]pulse.Sample{100, -100, 100, -100}, 1, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if last := pin.edges[len(pin.edges)-1]; last.level {
		t.Fatal("expected pin forced LOW after fault")
	}
}

func TestJammerLifecycle(t *testing.T) {
	pwm := hal.NewVirtualPWM(4)
	j := NewJammer(pwm)

	if err := j.Start(1, DefaultJamFrequency); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !j.Active() || j.Pin() != 1 || j.Frequency() != DefaultJamFrequency {
		t.Fatalf("unexpected state active=%v pin=%d freq=%d", j.Active(), j.Pin(), j.Frequency())
	}
	freq, duty, claimed := pwm.Snapshot(1)
	if !claimed || freq != DefaultJamFrequency || duty != 0xffff/2 {
		t.Fatalf("unexpected pwm freq=%d duty=%d claimed=%v", freq, duty, claimed)
	}
	if err := j.Start(2, DefaultJamFrequency); !errors.Is(err, ErrJammerActive) {
		t.Fatalf("expected ErrJammerActive, got %v", err)
	}

	if err := j.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if j.Active() {
		t.Fatal("expected inactive after Stop")
	}
	if _, duty, claimed := pwm.Snapshot(1); claimed || duty != 0 {
		t.Fatalf("expected released channel, duty=%d claimed=%v", duty, claimed)
	}
	if err := j.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestJammerStartFailureLeavesNothingClaimed(t *testing.T) {
	pwm := hal.NewVirtualPWM(4)
	j := NewJammer(pwm)

	if err := j.Start(1, 0); err == nil {
		t.Fatal("expected configure failure")
	}
	if j.Active() {
		t.Fatal("jammer active after failed start")
	}
	if _, _, claimed := pwm.Snapshot(1); claimed {
		t.Fatal("channel left claimed after failed start")
	}

	other, err := pwm.Channel(2)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	defer other.Release()
	if err := j.Start(2, DefaultJamFrequency); !errors.Is(err, hal.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if j.Active() {
		t.Fatal("jammer active after busy start")
	}
}
