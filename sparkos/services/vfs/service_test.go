package vfs

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/goleak"

	vfsclient "multitool/sparkos/client/vfs"
	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// runWithService starts the service and runs fn as a client task with a
// 1ms tick source, then shuts the kernel down.
func runWithService(t *testing.T, fsys afero.Fs, fn func(ctx *kernel.Context, c *vfsclient.Client)) {
	t.Helper()

	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	k.AddTask(New(fsys, ep.Restrict(kernel.RightRecv)))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(time.Millisecond)
		defer tick.Stop()
		for seq := uint64(1); ; seq++ {
			select {
			case <-stop:
				return
			case <-tick.C:
				k.TickTo(seq)
			}
		}
	}()

	done := make(chan struct{})
	k.AddTask(kernel.TaskFunc(func(ctx *kernel.Context) {
		defer close(done)
		fn(ctx, vfsclient.New(ep.Restrict(kernel.RightSend)))
	}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("client task timed out")
	}
	k.Close()
	k.Wait()
	close(stop)
	wg.Wait()
}

func TestWriteReadRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	data := bytes.Repeat([]byte("RAW_Data: 350 -1050\n"), 40)

	runWithService(t, fsys, func(ctx *kernel.Context, c *vfsclient.Client) {
		n, err := c.Write(ctx, "/subghz/gate.sub", proto.VFSWriteTruncate, data)
		if err != nil {
			t.Errorf("Write: %v", err)
			return
		}
		if int(n) != len(data) {
			t.Errorf("expected %d bytes written, got %d", len(data), n)
		}

		got, err := c.ReadFile(ctx, "/subghz/gate.sub", 1<<16)
		if err != nil {
			t.Errorf("ReadFile: %v", err)
			return
		}
		if !bytes.Equal(got, data) {
			t.Errorf("read back %d bytes, want %d", len(got), len(data))
		}

		typ, size, err := c.Stat(ctx, "/subghz/gate.sub")
		if err != nil || typ != proto.VFSEntryFile || int(size) != len(data) {
			t.Errorf("Stat: typ=%d size=%d err=%v", typ, size, err)
		}
	})

	if ok, _ := afero.Exists(fsys, "/subghz/gate.sub"); !ok {
		t.Fatal("file not on backing fs")
	}
}

func TestListSortedAndRemove(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"c.sub", "a.sub", "b.sub"} {
		if err := afero.WriteFile(fsys, "/subghz/"+name, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	runWithService(t, fsys, func(ctx *kernel.Context, c *vfsclient.Client) {
		entries, err := c.List(ctx, "/subghz")
		if err != nil {
			t.Errorf("List: %v", err)
			return
		}
		if len(entries) != 3 || entries[0].Name != "a.sub" || entries[2].Name != "c.sub" {
			t.Errorf("unexpected listing %+v", entries)
		}

		if err := c.Remove(ctx, "/subghz/b.sub"); err != nil {
			t.Errorf("Remove: %v", err)
		}
		if _, _, err := c.Stat(ctx, "/subghz/b.sub"); !vfsclient.IsNotFound(err) {
			t.Errorf("expected not found after remove, got %v", err)
		}
	})
}

func TestMissingFileIsNotFound(t *testing.T) {
	runWithService(t, afero.NewMemMapFs(), func(ctx *kernel.Context, c *vfsclient.Client) {
		if _, err := c.ReadFile(ctx, "/nope.sub", 1024); !vfsclient.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
		if _, err := c.List(ctx, "/missing"); !vfsclient.IsNotFound(err) {
			t.Errorf("expected not found listing, got %v", err)
		}
	})
}
