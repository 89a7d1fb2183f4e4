package proto

// VFSEntryType is a directory entry type.
type VFSEntryType uint8

const (
	VFSEntryUnknown VFSEntryType = iota
	VFSEntryFile
	VFSEntryDir
)

// VFSWriteMode selects how a write session treats an existing file.
type VFSWriteMode uint8

const (
	VFSWriteTruncate VFSWriteMode = iota
	VFSWriteAppend
)

// Requests that name a single path (list, remove, stat) share one layout:
// u32 request id, then a u16-length-prefixed UTF-8 path.

func pathRequest(requestID uint32, path string) []byte {
	return newEnc(6 + len(path)).u32(requestID).str16(path)
}

func decodePathRequest(b []byte) (requestID uint32, path string, ok bool) {
	d := dec{b: b}
	requestID, path = d.u32(), d.str16()
	if !d.end() {
		return 0, "", false
	}
	return requestID, path, true
}

// idOnly is the layout of responses and requests that carry nothing but the
// request id.
func idOnly(requestID uint32) []byte { return newEnc(4).u32(requestID) }

func decodeIDOnly(b []byte) (requestID uint32, ok bool) {
	d := dec{b: b}
	requestID = d.u32()
	return requestID, d.end()
}

func VFSListPayload(requestID uint32, path string) []byte { return pathRequest(requestID, path) }

func DecodeVFSListPayload(b []byte) (requestID uint32, path string, ok bool) {
	return decodePathRequest(b)
}

// VFSListRespPayload encodes one directory entry; the final message of a
// listing has done set and an empty name.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: done flag
//   - u8: entry type (VFSEntryType)
//   - u32: size in bytes (0 for directories)
//   - u16 + bytes: name
func VFSListRespPayload(requestID uint32, done bool, typ VFSEntryType, size uint32, name string) []byte {
	return newEnc(12 + len(name)).u32(requestID).flag(done).u8(uint8(typ)).u32(size).str16(name)
}

func DecodeVFSListRespPayload(
	b []byte,
) (requestID uint32, done bool, typ VFSEntryType, size uint32, name string, ok bool) {
	d := dec{b: b}
	requestID, done, typ, size, name = d.u32(), d.flag(), VFSEntryType(d.u8()), d.u32(), d.str16()
	if !d.end() {
		return 0, false, 0, 0, "", false
	}
	return requestID, done, typ, size, name, true
}

func VFSRemovePayload(requestID uint32, path string) []byte { return pathRequest(requestID, path) }

func DecodeVFSRemovePayload(b []byte) (requestID uint32, path string, ok bool) {
	return decodePathRequest(b)
}

func VFSRemoveRespPayload(requestID uint32) []byte { return idOnly(requestID) }

func DecodeVFSRemoveRespPayload(b []byte) (requestID uint32, ok bool) { return decodeIDOnly(b) }

func VFSStatPayload(requestID uint32, path string) []byte { return pathRequest(requestID, path) }

func DecodeVFSStatPayload(b []byte) (requestID uint32, path string, ok bool) {
	return decodePathRequest(b)
}

// VFSStatRespPayload encodes u32 request id, u8 entry type, u32 size.
func VFSStatRespPayload(requestID uint32, typ VFSEntryType, size uint32) []byte {
	return newEnc(9).u32(requestID).u8(uint8(typ)).u32(size)
}

func DecodeVFSStatRespPayload(b []byte) (requestID uint32, typ VFSEntryType, size uint32, ok bool) {
	d := dec{b: b}
	requestID, typ, size = d.u32(), VFSEntryType(d.u8()), d.u32()
	if !d.end() {
		return 0, 0, 0, false
	}
	return requestID, typ, size, true
}

// VFSReadPayload asks for up to maxBytes of path starting at off.
//
// Layout (little-endian):
//   - u32: request id
//   - u16 + bytes: path
//   - u32: offset
//   - u16: max bytes
func VFSReadPayload(requestID uint32, path string, off uint32, maxBytes uint16) []byte {
	return newEnc(12 + len(path)).u32(requestID).str16(path).u32(off).u16(maxBytes)
}

func DecodeVFSReadPayload(
	b []byte,
) (requestID uint32, path string, off uint32, maxBytes uint16, ok bool) {
	d := dec{b: b}
	requestID, path, off, maxBytes = d.u32(), d.str16(), d.u32(), d.u16()
	if !d.end() {
		return 0, "", 0, 0, false
	}
	return requestID, path, off, maxBytes, true
}

// VFSReadRespPayload carries one read result.
//
// Layout (little-endian):
//   - u32: request id
//   - u32: offset of data
//   - u8: eof flag
//   - u16 + bytes: data
func VFSReadRespPayload(requestID uint32, off uint32, eof bool, data []byte) []byte {
	return newEnc(11 + len(data)).u32(requestID).u32(off).flag(eof).bytes16(data)
}

func DecodeVFSReadRespPayload(
	b []byte,
) (requestID uint32, off uint32, eof bool, data []byte, ok bool) {
	d := dec{b: b}
	requestID, off, eof, data = d.u32(), d.u32(), d.flag(), d.bytes16()
	if !d.end() {
		return 0, 0, false, nil, false
	}
	return requestID, off, eof, data, true
}

// VFSWriteOpenPayload starts a write session: u32 request id, u8 mode,
// u16-length-prefixed path. Chunks and the close reuse the request id.
func VFSWriteOpenPayload(requestID uint32, mode VFSWriteMode, path string) []byte {
	return newEnc(7 + len(path)).u32(requestID).u8(uint8(mode)).str16(path)
}

func DecodeVFSWriteOpenPayload(b []byte) (requestID uint32, mode VFSWriteMode, path string, ok bool) {
	d := dec{b: b}
	requestID, mode, path = d.u32(), VFSWriteMode(d.u8()), d.str16()
	if !d.end() {
		return 0, 0, "", false
	}
	return requestID, mode, path, true
}

func VFSWriteChunkPayload(requestID uint32, data []byte) []byte {
	return newEnc(6 + len(data)).u32(requestID).bytes16(data)
}

func DecodeVFSWriteChunkPayload(b []byte) (requestID uint32, data []byte, ok bool) {
	d := dec{b: b}
	requestID, data = d.u32(), d.bytes16()
	if !d.end() {
		return 0, nil, false
	}
	return requestID, data, true
}

func VFSWriteClosePayload(requestID uint32) []byte { return idOnly(requestID) }

func DecodeVFSWriteClosePayload(b []byte) (requestID uint32, ok bool) { return decodeIDOnly(b) }

// VFSWriteRespPayload acknowledges a write step: u32 request id, u8 done,
// u32 total bytes written (meaningful once done is set).
func VFSWriteRespPayload(requestID uint32, done bool, n uint32) []byte {
	return newEnc(9).u32(requestID).flag(done).u32(n)
}

func DecodeVFSWriteRespPayload(b []byte) (requestID uint32, done bool, n uint32, ok bool) {
	d := dec{b: b}
	requestID, done, n = d.u32(), d.flag(), d.u32()
	if !d.end() {
		return 0, false, 0, false
	}
	return requestID, done, n, true
}
