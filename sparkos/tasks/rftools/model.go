package rftools

import (
	"multitool/hal"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
	"multitool/sparkos/rf/bruteforce"
	"multitool/sparkos/rf/encoder"
)

type page uint8

const (
	pageMenu page = iota
	pageCapture
	pageReplay
	pageBruteforce
	pageRollJam
	pageJammer
)

var menuPages = []page{pageCapture, pageReplay, pageBruteforce, pageRollJam, pageJammer}

func (p page) String() string {
	switch p {
	case pageMenu:
		return "Menu"
	case pageCapture:
		return "Capture"
	case pageReplay:
		return "Replay"
	case pageBruteforce:
		return "Bruteforce"
	case pageRollJam:
		return "RollJam"
	case pageJammer:
		return "Jammer"
	default:
		return "?"
	}
}

type rollStage uint8

const (
	rollIdle rollStage = iota
	rollListening
	rollCaptured
)

func (s rollStage) String() string {
	switch s {
	case rollListening:
		return "listening"
	case rollCaptured:
		return "captured"
	default:
		return "idle"
	}
}

// jamPresets are the square-wave frequencies offered on the jammer page.
var jamPresets = []uint32{315_000, 433_920, 868_350}

// jamChoices returns the presets, with def added when it is not one of
// them, and the index of def.
func jamChoices(def uint32) ([]uint32, int) {
	out := append([]uint32(nil), jamPresets...)
	for i, f := range out {
		if f == def {
			return out, i
		}
	}
	return append(out, def), len(out)
}

type bruteStage uint8

const (
	bruteSelect bruteStage = iota
	bruteConfirm
	bruteRunning
)

// bruteModel is the bruteforce page: pick a protocol and width, confirm the
// estimate, then follow the sweep the service runs.
type bruteModel struct {
	protoIdx int
	bitsIdx  int
	stage    bruteStage
	// estimate is the whole-sweep time in seconds shown on the confirm step.
	estimate uint64
	progress proto.RFProgress
}

func (b *bruteModel) protocol() *encoder.Protocol { return encoder.Protocols[b.protoIdx] }

func (b *bruteModel) bitsValue() int { return b.protocol().BitCounts[b.bitsIdx] }

// computeEstimate mirrors the scheduler: an all-zero frame sent with the
// sweep's repeats, times the code space.
func (b *bruteModel) computeEstimate() {
	bits := b.bitsValue()
	perCode := bruteforce.EstimatePerCode(encoder.EncodeTrain(b.protocol(), 0, bits))
	b.estimate = perCode * (uint64(1) << uint(bits)) / 1_000_000
}

func stateName(s uint8) string { return bruteforce.State(s).String() }

func sweepActive(s uint8) bool {
	st := bruteforce.State(s)
	return st == bruteforce.Running || st == bruteforce.Paused
}

// bruteEnter picks up a sweep that kept running while the page was closed.
func (t *Task) bruteEnter(ctx *kernel.Context) {
	b := &t.brute
	pr, err := t.rf.Progress(ctx)
	if err != nil {
		t.fail(ctx, "progress", err)
		b.stage = bruteSelect
		return
	}
	if sweepActive(pr.State) {
		b.progress = pr
		b.stage = bruteRunning
		for i, p := range encoder.Protocols {
			if p.ID != pr.ProtocolID {
				continue
			}
			b.protoIdx = i
			for j, bits := range p.BitCounts {
				if bits == int(pr.Bits) {
					b.bitsIdx = j
				}
			}
		}
		return
	}
	b.stage = bruteSelect
}

func (t *Task) bruteKey(ctx *kernel.Context, code hal.KeyCode) {
	b := &t.brute
	switch b.stage {
	case bruteSelect:
		switch code {
		case hal.KeyUp:
			b.protoIdx = wrap(b.protoIdx-1, len(encoder.Protocols))
			b.bitsIdx = 0
		case hal.KeyDown:
			b.protoIdx = wrap(b.protoIdx+1, len(encoder.Protocols))
			b.bitsIdx = 0
		case hal.KeyLeft:
			b.bitsIdx = wrap(b.bitsIdx-1, len(b.protocol().BitCounts))
		case hal.KeyRight:
			b.bitsIdx = wrap(b.bitsIdx+1, len(b.protocol().BitCounts))
		case hal.KeyEnter:
			b.computeEstimate()
			b.stage = bruteConfirm
		}

	case bruteConfirm:
		if code != hal.KeyEnter {
			return
		}
		p := b.protocol()
		if err := t.rf.StartBruteforce(ctx, p.ID, b.bitsValue()); err != nil {
			t.fail(ctx, "bruteforce", err)
			return
		}
		b.stage = bruteRunning
		t.msg = ""
		t.bruteRefresh(ctx)

	case bruteRunning:
		if code != hal.KeyEnter {
			return
		}
		var err error
		switch bruteforce.State(b.progress.State) {
		case bruteforce.Running:
			err = t.rf.PauseBruteforce(ctx)
		case bruteforce.Paused:
			err = t.rf.ResumeBruteforce(ctx)
		default:
			b.stage = bruteSelect
			t.msg = ""
			return
		}
		if err != nil {
			t.fail(ctx, "bruteforce", err)
		}
		t.bruteRefresh(ctx)
	}
}

// bruteEscape steps back one stage, aborting a live sweep. Only Escape on
// the selection step closes the page.
func (t *Task) bruteEscape(ctx *kernel.Context) bool {
	b := &t.brute
	switch b.stage {
	case bruteConfirm:
		b.stage = bruteSelect
		return false
	case bruteRunning:
		if sweepActive(b.progress.State) {
			if err := t.rf.AbortBruteforce(ctx); err != nil {
				t.fail(ctx, "abort", err)
				return false
			}
			t.msg = "aborted"
		}
		b.stage = bruteSelect
		b.progress = proto.RFProgress{}
		return false
	}
	return true
}

func (t *Task) bruteRefresh(ctx *kernel.Context) {
	b := &t.brute
	if b.stage != bruteRunning {
		return
	}
	pr, err := t.rf.Progress(ctx)
	if err != nil {
		t.fail(ctx, "progress", err)
		return
	}
	if bruteforce.State(pr.State) == bruteforce.Done && bruteforce.State(b.progress.State) != bruteforce.Done {
		t.msg = "sweep done"
		t.log(ctx, "rftools: bruteforce done, %d codes", pr.Current)
	}
	b.progress = pr
}
