package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/spf13/afero"

	"multitool/sparkos/kernel"
	"multitool/sparkos/proto"
)

const maxNameBytes = kernel.MaxMessageBytes - 12

// Service serves a filesystem over IPC. Captures and code databases live
// here; the backing afero.Fs is an OS directory on the host and memory on
// the device.
type Service struct {
	inCap kernel.Capability
	fs    afero.Fs

	writers map[uint32]*writeSession
}

type writeSession struct {
	reply kernel.Capability
	file  afero.File
	n     uint32
}

func New(fsys afero.Fs, inCap kernel.Capability) *Service {
	return &Service{fs: fsys, inCap: inCap}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.inCap)
	if !ok {
		return
	}
	s.writers = make(map[uint32]*writeSession)
	defer s.closeWriters()

	for msg := range ch {
		switch proto.Kind(msg.Kind) {
		case proto.MsgVFSList:
			s.handleList(ctx, msg)
		case proto.MsgVFSRemove:
			s.handleRemove(ctx, msg)
		case proto.MsgVFSStat:
			s.handleStat(ctx, msg)
		case proto.MsgVFSRead:
			s.handleRead(ctx, msg)
		case proto.MsgVFSWriteOpen:
			s.handleWriteOpen(ctx, msg)
		case proto.MsgVFSWriteChunk:
			s.handleWriteChunk(ctx, msg)
		case proto.MsgVFSWriteClose:
			s.handleWriteClose(ctx, msg)
		}
	}
}

func (s *Service) closeWriters() {
	for id, sess := range s.writers {
		_ = sess.file.Close()
		delete(s.writers, id)
	}
}

func (s *Service) handleList(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	requestID, dir, ok := proto.DecodeVFSListPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, reply, proto.ErrBadMessage, proto.MsgVFSList, 0, "decode list")
		return
	}

	infos, err := afero.ReadDir(s.fs, clean(dir))
	if err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSList, requestID, err.Error())
		return
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	for _, info := range infos {
		name := info.Name()
		if len(name) > maxNameBytes {
			continue
		}
		typ, size := entryOf(info)
		_ = s.send(ctx, reply, proto.MsgVFSListResp, proto.VFSListRespPayload(requestID, false, typ, size, name))
	}
	_ = s.send(ctx, reply, proto.MsgVFSListResp, proto.VFSListRespPayload(requestID, true, proto.VFSEntryUnknown, 0, ""))
}

func (s *Service) handleRemove(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	requestID, p, ok := proto.DecodeVFSRemovePayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, reply, proto.ErrBadMessage, proto.MsgVFSRemove, 0, "decode remove")
		return
	}
	if err := s.fs.Remove(clean(p)); err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSRemove, requestID, err.Error())
		return
	}
	_ = s.send(ctx, reply, proto.MsgVFSRemoveResp, proto.VFSRemoveRespPayload(requestID))
}

func (s *Service) handleStat(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	requestID, p, ok := proto.DecodeVFSStatPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, reply, proto.ErrBadMessage, proto.MsgVFSStat, 0, "decode stat")
		return
	}
	info, err := s.fs.Stat(clean(p))
	if err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSStat, requestID, err.Error())
		return
	}
	typ, size := entryOf(info)
	_ = s.send(ctx, reply, proto.MsgVFSStatResp, proto.VFSStatRespPayload(requestID, typ, size))
}

func (s *Service) handleRead(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	requestID, p, off, maxBytes, ok := proto.DecodeVFSReadPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, reply, proto.ErrBadMessage, proto.MsgVFSRead, 0, "decode read")
		return
	}

	max := int(maxBytes)
	if maxPayload := kernel.MaxMessageBytes - 11; max > maxPayload {
		max = maxPayload
	}
	buf := make([]byte, max)

	f, err := s.fs.Open(clean(p))
	if err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSRead, requestID, err.Error())
		return
	}
	defer f.Close()

	n, err := f.ReadAt(buf, int64(off))
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSRead, requestID, err.Error())
		return
	}
	if !eof {
		if info, err := f.Stat(); err == nil && int64(off)+int64(n) >= info.Size() {
			eof = true
		}
	}
	_ = s.send(ctx, reply, proto.MsgVFSReadResp, proto.VFSReadRespPayload(requestID, off, eof, buf[:n]))
}

func (s *Service) handleWriteOpen(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	requestID, mode, p, ok := proto.DecodeVFSWriteOpenPayload(msg.Payload())
	if !ok {
		_ = s.sendErr(ctx, reply, proto.ErrBadMessage, proto.MsgVFSWriteOpen, 0, "decode write open")
		return
	}
	if !reply.Valid() {
		return
	}

	if prev := s.writers[requestID]; prev != nil {
		_ = prev.file.Close()
		delete(s.writers, requestID)
	}

	p = clean(p)
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSWriteOpen, requestID, err.Error())
		return
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == proto.VFSWriteAppend {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := s.fs.OpenFile(p, flags, 0o644)
	if err != nil {
		_ = s.sendErr(ctx, reply, mapVFSError(err), proto.MsgVFSWriteOpen, requestID, err.Error())
		return
	}

	s.writers[requestID] = &writeSession{reply: reply, file: f}
	_ = s.send(ctx, reply, proto.MsgVFSWriteResp, proto.VFSWriteRespPayload(requestID, false, 0))
}

func (s *Service) handleWriteChunk(ctx *kernel.Context, msg kernel.Message) {
	requestID, data, ok := proto.DecodeVFSWriteChunkPayload(msg.Payload())
	if !ok {
		return
	}
	sess := s.writers[requestID]
	if sess == nil {
		return
	}

	n, err := sess.file.Write(data)
	sess.n += uint32(n)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = s.sendErr(ctx, sess.reply, mapVFSError(err), proto.MsgVFSWriteChunk, requestID, err.Error())
		_ = sess.file.Close()
		delete(s.writers, requestID)
	}
}

func (s *Service) handleWriteClose(ctx *kernel.Context, msg kernel.Message) {
	requestID, ok := proto.DecodeVFSWriteClosePayload(msg.Payload())
	if !ok {
		return
	}
	sess := s.writers[requestID]
	if sess == nil {
		return
	}
	delete(s.writers, requestID)

	if err := sess.file.Close(); err != nil {
		_ = s.sendErr(ctx, sess.reply, mapVFSError(err), proto.MsgVFSWriteClose, requestID, err.Error())
		return
	}
	_ = s.send(ctx, sess.reply, proto.MsgVFSWriteResp, proto.VFSWriteRespPayload(requestID, true, sess.n))
}

func (s *Service) send(ctx *kernel.Context, to kernel.Capability, kind proto.Kind, payload []byte) error {
	for {
		res := ctx.SendToCapResult(to, uint16(kind), payload, kernel.Capability{})
		switch res {
		case kernel.SendOK:
			return nil
		case kernel.SendErrQueueFull:
			ctx.BlockOnTick()
		default:
			return fmt.Errorf("vfs send %s: %s", kind, res)
		}
	}
}

func (s *Service) sendErr(
	ctx *kernel.Context,
	to kernel.Capability,
	code proto.ErrCode,
	ref proto.Kind,
	requestID uint32,
	detail string,
) error {
	if !to.Valid() {
		return nil
	}
	if len(detail) > 64 {
		detail = detail[:64]
	}
	d := proto.ErrorDetailWithRequestID(requestID, []byte(detail))
	return s.send(ctx, to, proto.MsgError, proto.ErrorPayload(code, ref, d))
}

func entryOf(info fs.FileInfo) (proto.VFSEntryType, uint32) {
	if info.IsDir() {
		return proto.VFSEntryDir, 0
	}
	return proto.VFSEntryFile, uint32(info.Size())
}

func clean(p string) string {
	return path.Clean("/" + p)
}

func mapVFSError(err error) proto.ErrCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return proto.ErrNotFound
	case errors.Is(err, fs.ErrExist):
		return proto.ErrBusy
	case errors.Is(err, fs.ErrPermission):
		return proto.ErrUnauthorized
	case errors.Is(err, fs.ErrInvalid), errors.Is(err, io.ErrShortWrite):
		return proto.ErrBadMessage
	default:
		return proto.ErrInternal
	}
}
