package rftools

import (
	"fmt"
	"path"
	"sort"
	"strings"

	vfsclient "multitool/sparkos/client/vfs"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
	"multitool/sparkos/rf/pulse"
	"multitool/sparkos/rf/subfile"
)

// maxCaptureFiles bounds the capNNN.sub numbering.
const maxCaptureFiles = 1000

func (t *Task) loadFileList(ctx *kernel.Context) {
	t.files = t.files[:0]
	t.fileSel = 0
	entries, err := t.store.List(ctx, t.cfg.Dir)
	if err != nil {
		if !vfsclient.IsNotFound(err) {
			t.fail(ctx, "list", err)
		}
		return
	}
	for _, e := range entries {
		if e.Type == proto.VFSEntryFile && isCaptureFile(e.Name) {
			t.files = append(t.files, e.Name)
		}
	}
	sort.Strings(t.files)
}

func (t *Task) loadCapture(ctx *kernel.Context, name string) ([]pulse.Sample, error) {
	data, err := t.store.ReadFile(ctx, path.Join(t.cfg.Dir, name), maxFileBytes)
	if err != nil {
		return nil, err
	}
	c, err := subfile.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c.Samples, nil
}

// saveCapture writes the held samples to the next free capNNN.sub.
func (t *Task) saveCapture(ctx *kernel.Context) (string, error) {
	if len(t.samples) == 0 {
		return "", subfile.ErrNoSamples
	}

	var taken []string
	entries, err := t.store.List(ctx, t.cfg.Dir)
	if err != nil && !vfsclient.IsNotFound(err) {
		return "", err
	}
	for _, e := range entries {
		taken = append(taken, e.Name)
	}
	name, ok := nextCaptureName(taken)
	if !ok {
		return "", fmt.Errorf("no free capture name in %s", t.cfg.Dir)
	}

	data := subfile.MarshalCapture(subfile.Capture{
		Header:  subfile.Header{Frequency: t.cfg.Frequency, Preset: t.cfg.Preset, Protocol: subfile.ProtocolRAW},
		Samples: t.samples,
	})
	if _, err := t.store.Write(ctx, path.Join(t.cfg.Dir, name), proto.VFSWriteTruncate, data); err != nil {
		return "", err
	}
	t.log(ctx, "rftools: saved %s (%d samples)", name, len(t.samples))
	return name, nil
}

// nextCaptureName returns the lowest capNNN.sub not in taken.
func nextCaptureName(taken []string) (string, bool) {
	used := make(map[string]bool, len(taken))
	for _, n := range taken {
		used[strings.ToLower(n)] = true
	}
	for i := 0; i < maxCaptureFiles; i++ {
		name := fmt.Sprintf("cap%03d%s", i, subfile.Ext)
		if !used[name] {
			return name, true
		}
	}
	return "", false
}

func isCaptureFile(name string) bool {
	return strings.EqualFold(path.Ext(name), subfile.Ext)
}
