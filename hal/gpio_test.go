package hal

import (
	"errors"
	"testing"
)

func TestLoopbackFiresInterrupt(t *testing.T) {
	tx, rx := newLoopbackPair("TX", "RX")
	if err := tx.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure tx: %v", err)
	}
	if err := rx.Configure(GPIOModeInput, GPIOPullNone); err != nil {
		t.Fatalf("Configure rx: %v", err)
	}

	var levels []bool
	if err := rx.SetInterrupt(GPIOEdgeBoth, func(level bool) { levels = append(levels, level) }); err != nil {
		t.Fatalf("SetInterrupt: %v", err)
	}

	for _, lvl := range []bool{true, true, false, true, false} {
		if err := tx.Write(lvl); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	want := []bool{true, false, true, false}
	if len(levels) != len(want) {
		t.Fatalf("expected %d edges, got %d (%v)", len(want), len(levels), levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("edge %d: expected %v, got %v", i, want[i], levels[i])
		}
	}

	level, err := rx.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if level {
		t.Fatal("expected rx low after last write")
	}
}

func TestInterruptEdgeFilter(t *testing.T) {
	tx, rx := newLoopbackPair("TX", "RX")
	_ = tx.Configure(GPIOModeOutput, GPIOPullNone)
	_ = rx.Configure(GPIOModeInput, GPIOPullNone)

	rising := 0
	if err := rx.SetInterrupt(GPIOEdgeRising, func(level bool) {
		if !level {
			t.Error("falling edge delivered to rising-only handler")
		}
		rising++
	}); err != nil {
		t.Fatalf("SetInterrupt: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = tx.Write(true)
		_ = tx.Write(false)
	}
	if rising != 3 {
		t.Fatalf("expected 3 rising edges, got %d", rising)
	}

	if err := rx.SetInterrupt(GPIOEdgeBoth, nil); err != nil {
		t.Fatalf("detach: %v", err)
	}
	_ = tx.Write(true)
	if rising != 3 {
		t.Fatal("handler fired after detach")
	}
}

func TestSetInterruptRequiresInput(t *testing.T) {
	pin := newVirtualPin("GPIO1", GPIOCapInput|GPIOCapOutput|GPIOCapInterrupt)
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := pin.SetInterrupt(GPIOEdgeBoth, func(bool) {}); err == nil {
		t.Fatal("expected error attaching interrupt to output pin")
	}

	plain := newVirtualPin("GPIO2", GPIOCapInput)
	if err := plain.SetInterrupt(GPIOEdgeBoth, func(bool) {}); err == nil {
		t.Fatal("expected error on pin without interrupt capability")
	}
}

func TestVirtualPWMClaim(t *testing.T) {
	p := NewVirtualPWM(2)

	ch, err := p.Channel(1)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if _, err := p.Channel(1); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy on second claim, got %v", err)
	}
	if _, err := p.Channel(5); err == nil {
		t.Fatal("expected error for unknown pin")
	}

	if err := ch.Configure(0); err == nil {
		t.Fatal("expected error for zero frequency")
	}
	if err := ch.Configure(433_920_000 / 1000); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	ch.Set(ch.Top() / 2)

	freq, duty, claimed := p.Snapshot(1)
	if !claimed || freq != 433_920 || duty != ch.Top()/2 {
		t.Fatalf("unexpected snapshot freq=%d duty=%d claimed=%v", freq, duty, claimed)
	}

	if err := ch.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, duty, claimed := p.Snapshot(1); claimed || duty != 0 {
		t.Fatalf("expected released channel with zero duty, got duty=%d claimed=%v", duty, claimed)
	}
	if _, err := p.Channel(1); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
}

func TestSplitComponent(t *testing.T) {
	cases := []struct {
		in, comp, msg string
	}{
		{"rf: capture started", "rf", "capture started"},
		{"no component here", "", "no component here"},
		{"led: HIGH", "led", "HIGH"},
		{"x:y", "", "x:y"},
	}
	for _, tc := range cases {
		comp, msg := splitComponent(tc.in)
		if comp != tc.comp || msg != tc.msg {
			t.Fatalf("splitComponent(%q) = %q,%q; want %q,%q", tc.in, comp, msg, tc.comp, tc.msg)
		}
	}
}
