package pulse

import "testing"

func TestSampleSign(t *testing.T) {
	if s := Mark(350); !s.High() || s.Micros() != 350 {
		t.Fatalf("Mark(350) = %d", s)
	}
	if s := Space(1050); s.High() || s.Micros() != 1050 || s != -1050 {
		t.Fatalf("Space(1050) = %d", s)
	}
	if s := Mark(250_000); s != MaxDuration {
		t.Fatalf("expected clamp to %d, got %d", MaxDuration, s)
	}
	if s := Space(250_000); s != -MaxDuration {
		t.Fatalf("expected clamp to %d, got %d", -MaxDuration, s)
	}
}

func TestTotalMicros(t *testing.T) {
	train := []Sample{350, -1050, 1050, -350, MaxDuration, -MaxDuration}
	if got := TotalMicros(train); got != 2800+2*MaxDuration {
		t.Fatalf("TotalMicros = %d", got)
	}
	if got := TotalMicros(nil); got != 0 {
		t.Fatalf("TotalMicros(nil) = %d", got)
	}
}
