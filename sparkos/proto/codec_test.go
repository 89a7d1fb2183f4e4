package proto

import (
	"bytes"
	"testing"
)

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	good := VFSReadPayload(7, "/subghz/cap001.sub", 64, 96)
	if _, path, off, max, ok := DecodeVFSReadPayload(good); !ok || path != "/subghz/cap001.sub" || off != 64 || max != 96 {
		t.Fatalf("DecodeVFSReadPayload: path=%q off=%d max=%d ok=%v", path, off, max, ok)
	}

	if _, _, _, _, ok := DecodeVFSReadPayload(good[:len(good)-1]); ok {
		t.Fatalf("truncated read request decoded")
	}
	if _, _, _, _, ok := DecodeVFSReadPayload(append(good, 0)); ok {
		t.Fatalf("read request with trailing byte decoded")
	}

	// Path length pointing past the end.
	bad := []byte{1, 0, 0, 0, 200, 0, 'x'}
	if _, _, ok := DecodeVFSListPayload(bad); ok {
		t.Fatalf("overlong path decoded")
	}
}

func TestErrorDetailKeepsTrailingText(t *testing.T) {
	payload := ErrorPayload(ErrBusy, MsgRFJamStart, ErrorDetailWithRequestID(42, []byte("tx pin owned")))
	code, ref, detail, ok := DecodeErrorPayload(payload)
	if !ok || code != ErrBusy || ref != MsgRFJamStart {
		t.Fatalf("DecodeErrorPayload: code=%v ref=%v ok=%v", code, ref, ok)
	}
	id, text, ok := DecodeErrorDetailWithRequestID(detail)
	if !ok || id != 42 || !bytes.Equal(text, []byte("tx pin owned")) {
		t.Fatalf("DecodeErrorDetailWithRequestID: id=%d text=%q ok=%v", id, text, ok)
	}

	if _, _, _, ok := DecodeErrorPayload([]byte{1, 0, 2}); ok {
		t.Fatalf("short error payload decoded")
	}
}

func TestDecoderStaysBadAfterShortRead(t *testing.T) {
	d := dec{b: []byte{1, 2, 3}}
	if v := d.u32(); v != 0 || !d.bad {
		t.Fatalf("u32 on 3 bytes: v=%d bad=%v", v, d.bad)
	}
	if v := d.u8(); v != 0 {
		t.Fatalf("read after short read returned %d", v)
	}
	if d.end() {
		t.Fatalf("end() true after short read")
	}
}

func TestEmptyChunkRoundTrip(t *testing.T) {
	id, data, ok := DecodeVFSWriteChunkPayload(VFSWriteChunkPayload(3, nil))
	if !ok || id != 3 || len(data) != 0 {
		t.Fatalf("empty chunk: id=%d len=%d ok=%v", id, len(data), ok)
	}
}
