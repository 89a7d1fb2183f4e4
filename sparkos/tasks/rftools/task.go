// Package rftools is the Sub-GHz menu app: capture, replay, bruteforce,
// RollJam and jammer pages driven by the joystick.
package rftools

import (
	"multitool/hal"
	logclient "multitool/sparkos/client/logger"
	rfclient "multitool/sparkos/client/rf"
	timeclient "multitool/sparkos/client/time"
	vfsclient "multitool/sparkos/client/vfs"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
	"multitool/sparkos/rf/pulse"
	"multitool/sparkos/rf/transmit"
)

const (
	DefaultDir          = "/subghz"
	DefaultRefreshTicks = 100
	DefaultMaxSamples   = 4096

	// maxFileBytes bounds a .sub read from storage.
	maxFileBytes = 256 << 10
)

// Config tunes the app.
type Config struct {
	// JamPin is the PWM pin the jammer and RollJam pages drive.
	JamPin       int
	JamFrequency uint32
	// Frequency and Preset go into the header of saved captures.
	Frequency uint32
	Preset    string

	Dir          string
	RefreshTicks uint32
	MaxSamples   int
	Version      string
}

// radio is the RF service as the app uses it.
type radio interface {
	Status(ctx *kernel.Context) (proto.RFStatus, error)
	StartCapture(ctx *kernel.Context) error
	StopCapture(ctx *kernel.Context) error
	Drain(ctx *kernel.Context, max uint16, dst []pulse.Sample) ([]pulse.Sample, uint32, error)
	Transmit(ctx *kernel.Context, train []pulse.Sample, repeats int, gapUs uint32) error
	StartBruteforce(ctx *kernel.Context, protocolID uint8, bits int) error
	PauseBruteforce(ctx *kernel.Context) error
	ResumeBruteforce(ctx *kernel.Context) error
	AbortBruteforce(ctx *kernel.Context) error
	Progress(ctx *kernel.Context) (proto.RFProgress, error)
	StartJammer(ctx *kernel.Context, pin int, freqHz uint32) error
	StopJammer(ctx *kernel.Context) error
	Codes(ctx *kernel.Context) ([]proto.RFCode, error)
	ClearCodes(ctx *kernel.Context) error
}

// store is the VFS service as the app uses it.
type store interface {
	List(ctx *kernel.Context, dir string) ([]vfsclient.Entry, error)
	ReadFile(ctx *kernel.Context, path string, limit int) ([]byte, error)
	Write(ctx *kernel.Context, path string, mode proto.VFSWriteMode, data []byte) (uint32, error)
}

type Task struct {
	disp hal.Display
	in   hal.Input

	timeCap kernel.Capability
	logCap  kernel.Capability
	cfg     Config

	rf    radio
	store store
	d     *fbDisplay

	page    page
	menuSel int
	msg     string

	// capture and RollJam
	capturing bool
	samples   []pulse.Sample
	dropped   uint32
	codeCount int
	codes     []proto.RFCode
	rolljam   rollStage

	// replay
	files   []string
	fileSel int

	brute bruteModel

	jamming  bool
	jamFreqs []uint32
	jamSel   int
}

func New(disp hal.Display, in hal.Input, rfCap, vfsCap, timeCap, logCap kernel.Capability, cfg Config) *Task {
	return newTask(rfclient.New(rfCap), vfsclient.New(vfsCap), cfg, disp, in, timeCap, logCap)
}

func newTask(r radio, s store, cfg Config, disp hal.Display, in hal.Input, timeCap, logCap kernel.Capability) *Task {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.RefreshTicks == 0 {
		cfg.RefreshTicks = DefaultRefreshTicks
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = DefaultMaxSamples
	}
	if cfg.JamFrequency == 0 {
		cfg.JamFrequency = transmit.DefaultJamFrequency
	}
	t := &Task{
		disp:    disp,
		in:      in,
		timeCap: timeCap,
		logCap:  logCap,
		cfg:     cfg,
		rf:      r,
		store:   s,
	}
	t.jamFreqs, t.jamSel = jamChoices(cfg.JamFrequency)
	return t
}

func (t *Task) Run(ctx *kernel.Context) {
	if t.disp != nil {
		if fb := t.disp.Framebuffer(); fb != nil {
			t.d = &fbDisplay{fb: fb}
		}
	}
	var events <-chan hal.KeyEvent
	if t.in != nil {
		if kbd := t.in.Keyboard(); kbd != nil {
			events = kbd.Events()
		}
	}

	timer, err := timeclient.NewTimer(ctx, t.timeCap)
	if err != nil {
		t.log(ctx, "rftools: %v", err)
		return
	}
	if err := timer.Arm(ctx, t.cfg.RefreshTicks); err != nil {
		t.log(ctx, "rftools: %v", err)
	}
	t.render()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !ev.Press {
				continue
			}
			t.key(ctx, ev.Code)
			t.render()
		case msg, ok := <-timer.C():
			if !ok {
				return
			}
			if !timer.Fired(msg) {
				continue
			}
			t.refresh(ctx)
			t.render()
			if err := timer.Arm(ctx, t.cfg.RefreshTicks); err != nil {
				t.log(ctx, "rftools: %v", err)
			}
		}
	}
}

// key applies one joystick press to the current page.
func (t *Task) key(ctx *kernel.Context, code hal.KeyCode) {
	if t.page == pageMenu {
		switch code {
		case hal.KeyUp:
			t.menuSel = wrap(t.menuSel-1, len(menuPages))
		case hal.KeyDown:
			t.menuSel = wrap(t.menuSel+1, len(menuPages))
		case hal.KeyEnter, hal.KeyRight:
			t.open(ctx, menuPages[t.menuSel])
		}
		return
	}

	if code == hal.KeyEscape && t.escape(ctx) {
		t.leave(ctx)
		t.page = pageMenu
		return
	}

	switch t.page {
	case pageCapture:
		t.captureKey(ctx, code)
	case pageReplay:
		t.replayKey(ctx, code)
	case pageBruteforce:
		t.bruteKey(ctx, code)
	case pageRollJam:
		t.rollJamKey(ctx, code)
	case pageJammer:
		t.jammerKey(ctx, code)
	}
}

// escape handles Escape inside a page and reports whether the page should
// close.
func (t *Task) escape(ctx *kernel.Context) bool {
	if t.page == pageBruteforce {
		return t.bruteEscape(ctx)
	}
	return true
}

func (t *Task) open(ctx *kernel.Context, p page) {
	t.page = p
	t.msg = ""
	switch p {
	case pageReplay:
		t.loadFileList(ctx)
	case pageBruteforce:
		t.bruteEnter(ctx)
	case pageRollJam:
		t.rolljam = rollIdle
	case pageJammer:
		if st, err := t.rf.Status(ctx); err == nil {
			t.jamming = st.Jamming
		}
	}
}

// leave stops whatever the page left running on the radio.
func (t *Task) leave(ctx *kernel.Context) {
	switch t.page {
	case pageCapture:
		if t.capturing {
			t.stopCapture(ctx)
		}
	case pageRollJam:
		if t.rolljam == rollListening {
			t.stopRollJam(ctx)
		}
	case pageJammer:
		if t.jamming {
			t.toggleJammer(ctx)
		}
	}
	t.msg = ""
}

func (t *Task) refresh(ctx *kernel.Context) {
	switch t.page {
	case pageCapture:
		if t.capturing {
			t.drain(ctx)
		}
	case pageRollJam:
		if t.rolljam == rollListening {
			t.drain(ctx)
			if codes, err := t.rf.Codes(ctx); err == nil {
				t.codes = codes
			}
		}
	case pageBruteforce:
		t.bruteRefresh(ctx)
	}
}

// drain moves pending samples from the service into the capture, stopping
// the capture once MaxSamples are held.
func (t *Task) drain(ctx *kernel.Context) {
	room := t.cfg.MaxSamples - len(t.samples)
	if room <= 0 {
		t.stopCapture(ctx)
		t.msg = "capture full"
		return
	}
	if room > 0xffff {
		room = 0xffff
	}
	samples, dropped, err := t.rf.Drain(ctx, uint16(room), t.samples)
	if err != nil {
		t.fail(ctx, "drain", err)
		return
	}
	t.samples = samples
	t.dropped = dropped
}

func (t *Task) startCapture(ctx *kernel.Context) bool {
	if err := t.rf.StartCapture(ctx); err != nil {
		t.fail(ctx, "capture", err)
		return false
	}
	t.capturing = true
	t.samples = t.samples[:0]
	t.dropped = 0
	return true
}

func (t *Task) stopCapture(ctx *kernel.Context) {
	if err := t.rf.StopCapture(ctx); err != nil {
		t.fail(ctx, "capture", err)
	}
	t.capturing = false
	if len(t.samples) < t.cfg.MaxSamples {
		t.drain(ctx)
	}
	if codes, err := t.rf.Codes(ctx); err == nil {
		t.codes = codes
		t.codeCount = len(codes)
	}
}

func (t *Task) captureKey(ctx *kernel.Context, code hal.KeyCode) {
	switch code {
	case hal.KeyEnter:
		if t.capturing {
			t.stopCapture(ctx)
			t.msg = "stopped"
			return
		}
		if t.startCapture(ctx) {
			t.msg = "recording"
		}
	case hal.KeyRight:
		if t.capturing {
			t.stopCapture(ctx)
		}
		name, err := t.saveCapture(ctx)
		if err != nil {
			t.fail(ctx, "save", err)
			return
		}
		t.msg = "saved " + name
	}
}

func (t *Task) replayKey(ctx *kernel.Context, code hal.KeyCode) {
	switch code {
	case hal.KeyUp:
		t.fileSel = wrap(t.fileSel-1, len(t.files))
	case hal.KeyDown:
		t.fileSel = wrap(t.fileSel+1, len(t.files))
	case hal.KeyEnter:
		if len(t.files) == 0 {
			return
		}
		samples, err := t.loadCapture(ctx, t.files[t.fileSel])
		if err != nil {
			t.fail(ctx, "load", err)
			return
		}
		if err := t.rf.Transmit(ctx, samples, 1, 0); err != nil {
			t.fail(ctx, "replay", err)
			return
		}
		t.samples = samples
		t.msg = "sent " + t.files[t.fileSel]
		t.log(ctx, "rftools: replayed %s (%d samples)", t.files[t.fileSel], len(samples))
	}
}

func (t *Task) rollJamKey(ctx *kernel.Context, code hal.KeyCode) {
	if code != hal.KeyEnter {
		return
	}
	switch t.rolljam {
	case rollIdle:
		if err := t.rf.ClearCodes(ctx); err != nil {
			t.fail(ctx, "rolljam", err)
			return
		}
		t.codes = nil
		if err := t.rf.StartJammer(ctx, t.cfg.JamPin, t.cfg.JamFrequency); err != nil {
			t.fail(ctx, "jammer", err)
			return
		}
		if !t.startCapture(ctx) {
			_ = t.rf.StopJammer(ctx)
			return
		}
		t.rolljam = rollListening
		t.msg = "jamming, listening"
	case rollListening:
		t.stopRollJam(ctx)
	case rollCaptured:
		if len(t.samples) == 0 {
			t.msg = "nothing captured"
			t.rolljam = rollIdle
			return
		}
		if err := t.rf.Transmit(ctx, t.samples, 1, 0); err != nil {
			t.fail(ctx, "replay", err)
			return
		}
		t.msg = "replayed first capture"
		t.rolljam = rollIdle
	}
}

func (t *Task) stopRollJam(ctx *kernel.Context) {
	if err := t.rf.StopJammer(ctx); err != nil {
		t.fail(ctx, "jammer", err)
	}
	t.stopCapture(ctx)
	t.rolljam = rollCaptured
	t.msg = ""
}

func (t *Task) jammerKey(ctx *kernel.Context, code hal.KeyCode) {
	switch code {
	case hal.KeyUp, hal.KeyDown:
		if t.jamming {
			t.msg = "stop first"
			return
		}
		dir := 1
		if code == hal.KeyUp {
			dir = -1
		}
		t.jamSel = wrap(t.jamSel+dir, len(t.jamFreqs))
	case hal.KeyEnter:
		t.toggleJammer(ctx)
	}
}

func (t *Task) toggleJammer(ctx *kernel.Context) {
	if t.jamming {
		if err := t.rf.StopJammer(ctx); err != nil {
			t.fail(ctx, "jammer", err)
			return
		}
		t.jamming = false
		t.msg = "jammer off"
		return
	}
	if err := t.rf.StartJammer(ctx, t.cfg.JamPin, t.jamFreq()); err != nil {
		t.fail(ctx, "jammer", err)
		return
	}
	t.jamming = true
	t.msg = "jammer on"
}

func (t *Task) jamFreq() uint32 { return t.jamFreqs[t.jamSel] }

func (t *Task) fail(ctx *kernel.Context, op string, err error) {
	switch {
	case rfclient.IsBusy(err):
		t.msg = op + ": radio busy"
	case rfclient.IsHardware(err):
		t.msg = op + ": hardware error"
	default:
		t.msg = op + " failed"
	}
	t.log(ctx, "rftools: %s: %v", op, err)
}

func (t *Task) log(ctx *kernel.Context, format string, args ...any) {
	_ = logclient.Logf(ctx, t.logCap, format, args...)
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
