package vfs

import (
	"errors"
	"fmt"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

// Entry describes a directory entry.
type Entry struct {
	Name string
	Type proto.VFSEntryType
	Size uint32
}

// Error is a MsgError reply from the service.
type Error struct {
	Op     string
	Code   proto.ErrCode
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("vfs %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("vfs %s: %s: %s", e.Op, e.Code, e.Detail)
}

// IsNotFound reports whether err is a not-found reply.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == proto.ErrNotFound
}

var errClosed = errors.New("vfs client: reply endpoint closed")

// readChunk is the largest read the service answers in one message.
const readChunk = kernel.MaxMessageBytes - 11

type Client struct {
	vfsCap kernel.Capability

	replyCapXfer kernel.Capability
	replyCh      <-chan kernel.Message

	nextRequestID uint32
}

type Writer struct {
	client *Client
	ctx    *kernel.Context

	requestID uint32
}

func New(vfsCap kernel.Capability) *Client {
	return &Client{vfsCap: vfsCap, nextRequestID: 1}
}

func (c *Client) ensureReply(ctx *kernel.Context) error {
	if c.replyCh != nil {
		return nil
	}

	ep := ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !ep.Valid() {
		return errors.New("vfs client: failed to allocate reply endpoint")
	}
	ch, ok := ctx.RecvChan(ep.Restrict(kernel.RightRecv))
	if !ok {
		return errors.New("vfs client: failed to receive from reply endpoint")
	}

	c.replyCapXfer = ep.Restrict(kernel.RightSend)
	c.replyCh = ch
	return nil
}

func (c *Client) nextID() uint32 {
	id := c.nextRequestID
	c.nextRequestID++
	if c.nextRequestID == 0 {
		c.nextRequestID = 1
	}
	return id
}

func (c *Client) send(ctx *kernel.Context, kind proto.Kind, payload []byte) error {
	for {
		res := ctx.SendToCapResult(c.vfsCap, uint16(kind), payload, c.replyCapXfer)
		switch res {
		case kernel.SendOK:
			return nil
		case kernel.SendErrQueueFull:
			ctx.BlockOnTick()
		default:
			return fmt.Errorf("vfs client send %s: %s", kind, res)
		}
	}
}

// request sends one request and feeds replies of kind want to handle until
// it reports done. MsgError replies for the request end the call.
func (c *Client) request(
	ctx *kernel.Context,
	op string,
	kind, want proto.Kind,
	payload []byte,
	reqID uint32,
	handle func(payload []byte) (done bool),
) error {
	if err := c.send(ctx, kind, payload); err != nil {
		return err
	}
	return c.await(op, want, reqID, handle, kind)
}

func (c *Client) await(op string, want proto.Kind, reqID uint32, handle func([]byte) bool, refs ...proto.Kind) error {
	for {
		msg, ok := <-c.replyCh
		if !ok {
			return errClosed
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgError:
			code, ref, detail, ok := proto.DecodeErrorPayload(msg.Payload())
			if !ok || !refMatches(ref, refs) {
				return &Error{Op: op, Code: code}
			}
			gotID, rest, ok := proto.DecodeErrorDetailWithRequestID(detail)
			if !ok || gotID != reqID {
				continue
			}
			return &Error{Op: op, Code: code, Detail: string(rest)}
		case want:
			if handle(msg.Payload()) {
				return nil
			}
		}
	}
}

func refMatches(ref proto.Kind, refs []proto.Kind) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

func (c *Client) List(ctx *kernel.Context, path string) ([]Entry, error) {
	if err := c.ensureReply(ctx); err != nil {
		return nil, err
	}

	reqID := c.nextID()
	var out []Entry
	err := c.request(ctx, "list", proto.MsgVFSList, proto.MsgVFSListResp, proto.VFSListPayload(reqID, path), reqID,
		func(p []byte) bool {
			gotID, done, typ, size, name, ok := proto.DecodeVFSListRespPayload(p)
			if !ok || gotID != reqID {
				return false
			}
			if done {
				return true
			}
			out = append(out, Entry{Name: name, Type: typ, Size: size})
			return false
		})
	return out, err
}

func (c *Client) Remove(ctx *kernel.Context, path string) error {
	if err := c.ensureReply(ctx); err != nil {
		return err
	}

	reqID := c.nextID()
	return c.request(ctx, "remove", proto.MsgVFSRemove, proto.MsgVFSRemoveResp, proto.VFSRemovePayload(reqID, path), reqID,
		func(p []byte) bool {
			gotID, ok := proto.DecodeVFSRemoveRespPayload(p)
			return ok && gotID == reqID
		})
}

func (c *Client) Stat(ctx *kernel.Context, path string) (proto.VFSEntryType, uint32, error) {
	if err := c.ensureReply(ctx); err != nil {
		return 0, 0, err
	}

	reqID := c.nextID()
	var typ proto.VFSEntryType
	var size uint32
	err := c.request(ctx, "stat", proto.MsgVFSStat, proto.MsgVFSStatResp, proto.VFSStatPayload(reqID, path), reqID,
		func(p []byte) bool {
			gotID, t, s, ok := proto.DecodeVFSStatRespPayload(p)
			if !ok || gotID != reqID {
				return false
			}
			typ, size = t, s
			return true
		})
	return typ, size, err
}

func (c *Client) ReadAt(ctx *kernel.Context, path string, off uint32, maxBytes uint16) ([]byte, bool, error) {
	if err := c.ensureReply(ctx); err != nil {
		return nil, false, err
	}

	reqID := c.nextID()
	var out []byte
	var eof bool
	err := c.request(ctx, "read", proto.MsgVFSRead, proto.MsgVFSReadResp, proto.VFSReadPayload(reqID, path, off, maxBytes), reqID,
		func(p []byte) bool {
			gotID, gotOff, e, data, ok := proto.DecodeVFSReadRespPayload(p)
			if !ok || gotID != reqID || gotOff != off {
				return false
			}
			out = append([]byte(nil), data...)
			eof = e
			return true
		})
	return out, eof, err
}

// ReadFile reads path in message-sized chunks, up to limit bytes.
func (c *Client) ReadFile(ctx *kernel.Context, path string, limit int) ([]byte, error) {
	var out []byte
	for {
		chunk, eof, err := c.ReadAt(ctx, path, uint32(len(out)), readChunk)
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
		if len(out) > limit {
			return out[:limit], fmt.Errorf("vfs read %s: larger than %d bytes", path, limit)
		}
		if eof || len(chunk) == 0 {
			return out, nil
		}
	}
}

func (c *Client) Write(ctx *kernel.Context, path string, mode proto.VFSWriteMode, data []byte) (uint32, error) {
	w, err := c.OpenWriter(ctx, path, mode)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		_, _ = w.Close()
		return 0, err
	}
	return w.Close()
}

func (c *Client) OpenWriter(ctx *kernel.Context, path string, mode proto.VFSWriteMode) (*Writer, error) {
	if err := c.ensureReply(ctx); err != nil {
		return nil, err
	}

	reqID := c.nextID()
	err := c.request(ctx, "write open", proto.MsgVFSWriteOpen, proto.MsgVFSWriteResp, proto.VFSWriteOpenPayload(reqID, mode, path), reqID,
		func(p []byte) bool {
			gotID, done, _, ok := proto.DecodeVFSWriteRespPayload(p)
			return ok && gotID == reqID && !done
		})
	if err != nil {
		return nil, err
	}
	return &Writer{client: c, ctx: ctx, requestID: reqID}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	maxChunk := kernel.MaxMessageBytes - 6
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > maxChunk {
			chunk = chunk[:maxChunk]
		}
		if err := w.client.send(w.ctx, proto.MsgVFSWriteChunk, proto.VFSWriteChunkPayload(w.requestID, chunk)); err != nil {
			return written, err
		}
		written += len(chunk)
		p = p[len(chunk):]
	}
	return written, nil
}

// Close commits the file and returns the number of bytes the service wrote.
func (w *Writer) Close() (uint32, error) {
	if err := w.client.send(w.ctx, proto.MsgVFSWriteClose, proto.VFSWriteClosePayload(w.requestID)); err != nil {
		return 0, err
	}

	var n uint32
	err := w.client.await("write", proto.MsgVFSWriteResp, w.requestID, func(p []byte) bool {
		gotID, done, got, ok := proto.DecodeVFSWriteRespPayload(p)
		if !ok || gotID != w.requestID || !done {
			return false
		}
		n = got
		return true
	}, proto.MsgVFSWriteChunk, proto.MsgVFSWriteClose)
	return n, err
}
