package capture

import (
	"sync"
	"testing"

	"multitool/sparkos/rf/pulse"
)

func TestFirstEdgeOnlySeeds(t *testing.T) {
	b := New(8)
	b.OnEdge(1000, true)
	if b.Pending() != 0 {
		t.Fatalf("expected no samples after first edge, got %d", b.Pending())
	}

	b.OnEdge(1350, false) // HIGH for 350us
	b.OnEdge(2400, true)  // LOW for 1050us

	got := b.DrainAll()
	want := []pulse.Sample{350, -1050}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClampLongIntervals(t *testing.T) {
	b := New(4)
	b.OnEdge(0, false)
	b.OnEdge(5_000_000, true)
	got := b.DrainAll()
	if len(got) != 1 || got[0] != -pulse.MaxDuration {
		t.Fatalf("expected [-%d], got %v", pulse.MaxDuration, got)
	}
}

func TestCapacityRoundsUp(t *testing.T) {
	if c := New(100).Cap(); c != 128 {
		t.Fatalf("expected 128, got %d", c)
	}
	if c := New(0).Cap(); c != DefaultCapacity {
		t.Fatalf("expected %d, got %d", DefaultCapacity, c)
	}
}

func TestOverflowKeepsOldest(t *testing.T) {
	b := New(16)
	now := uint64(0)
	level := false
	b.OnEdge(now, level)
	for i := 1; i <= 40; i++ {
		now += uint64(i)
		level = !level
		b.OnEdge(now, level)
		if b.Pending() > b.Cap() {
			t.Fatalf("pending %d exceeds capacity %d", b.Pending(), b.Cap())
		}
	}

	if b.Pending() != 16 {
		t.Fatalf("expected 16 pending, got %d", b.Pending())
	}
	if b.Dropped() != 24 {
		t.Fatalf("expected 24 dropped, got %d", b.Dropped())
	}
	got := b.DrainAll()
	for i, s := range got {
		if s.Micros() != uint32(i+1) {
			t.Fatalf("sample %d: expected magnitude %d, got %d", i, i+1, s.Micros())
		}
	}

	// Room again after draining.
	now += 7
	b.OnEdge(now, !level)
	if b.Pending() != 1 {
		t.Fatalf("expected 1 pending after drain, got %d", b.Pending())
	}
}

func TestDrainPartial(t *testing.T) {
	b := New(8)
	b.OnEdge(0, true)
	for i := 1; i <= 5; i++ {
		b.OnEdge(uint64(i*100), i%2 == 0)
	}
	dst := make([]pulse.Sample, 3)
	if n := b.Drain(dst); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if b.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", b.Pending())
	}
	if n := b.Drain(dst); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	if n := b.Drain(dst); n != 0 {
		t.Fatalf("expected empty drain, got %d", n)
	}
}

func TestResetClearsState(t *testing.T) {
	b := New(4)
	b.OnEdge(0, true)
	for i := 1; i < 10; i++ {
		b.OnEdge(uint64(i*10), i%2 == 0)
	}
	b.Reset()
	if b.Pending() != 0 || b.Dropped() != 0 {
		t.Fatalf("expected empty buffer after reset, pending=%d dropped=%d", b.Pending(), b.Dropped())
	}
	b.OnEdge(500, true)
	if b.Pending() != 0 {
		t.Fatal("expected first edge after reset to only seed")
	}
}

func TestConcurrentProducerConsumerOrder(t *testing.T) {
	const total = 20000
	b := New(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		now := uint64(0)
		b.OnEdge(now, false)
		for i := 1; i <= total; {
			if b.Pending() >= b.Cap() {
				continue
			}
			now += uint64(i%1000 + 1)
			b.OnEdge(now, i%2 == 0)
			i++
		}
	}()

	var got []pulse.Sample
	dst := make([]pulse.Sample, 17)
	for len(got) < total {
		n := b.Drain(dst)
		got = append(got, dst[:n]...)
	}
	wg.Wait()

	for i, s := range got {
		want := uint32((i+1)%1000 + 1)
		if s.Micros() != want {
			t.Fatalf("sample %d out of order: expected %d, got %d", i, want, s.Micros())
		}
	}
	if b.Dropped() != 0 {
		t.Fatalf("expected no drops with a pacing producer, got %d", b.Dropped())
	}
}
