package proto

import (
	"encoding/binary"

	"multitool/sparkos/rf/pulse"
)

const (
	// RFDrainChunkSamples is the most samples one MsgRFDrainResp carries.
	RFDrainChunkSamples = (128 - 10) / 4
	// RFTxChunkSamples is the most samples one MsgRFTxChunk carries.
	RFTxChunkSamples = (128 - 5) / 4
)

// RFOwner names the activity currently driving the TX pin.
type RFOwner uint8

const (
	RFOwnerNone RFOwner = iota
	RFOwnerReplay
	RFOwnerBruteforce
	RFOwnerJammer
)

func (o RFOwner) String() string {
	switch o {
	case RFOwnerNone:
		return "none"
	case RFOwnerReplay:
		return "replay"
	case RFOwnerBruteforce:
		return "bruteforce"
	case RFOwnerJammer:
		return "jammer"
	default:
		return "unknown"
	}
}

// RFRequestPayload encodes a request that carries only its id
// (capture stop, status, tx commit, bruteforce pause/resume/abort/progress,
// jammer stop, codes, codes clear, capture start).
//
// Layout (little-endian):
//   - u32: request id
func RFRequestPayload(requestID uint32) []byte { return idOnly(requestID) }

func DecodeRFRequestPayload(b []byte) (requestID uint32, ok bool) { return decodeIDOnly(b) }

// RFAckPayload encodes a MsgRFAck response.
//
// Layout (little-endian):
//   - u32: request id
//   - u16: ref kind (the request being acknowledged)
func RFAckPayload(requestID uint32, ref Kind) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(ref))
	return buf
}

func DecodeRFAckPayload(b []byte) (requestID uint32, ref Kind, ok bool) {
	if len(b) != 6 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), Kind(binary.LittleEndian.Uint16(b[4:6])), true
}

// RFStatus is the service state reported by MsgRFStatusResp.
type RFStatus struct {
	Capturing bool
	Jamming   bool
	Owner     RFOwner
	Pending   uint32
	Dropped   uint32
	Codes     uint8
	JamFreqHz uint32
}

// RFStatusRespPayload encodes a MsgRFStatusResp response.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: flags (bit0 capturing, bit1 jamming)
//   - u8: owner (RFOwner)
//   - u32: pending samples
//   - u32: dropped samples
//   - u8: captured codes
//   - u32: jammer frequency (Hz)
func RFStatusRespPayload(requestID uint32, st RFStatus) []byte {
	buf := make([]byte, 19)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	if st.Capturing {
		buf[4] |= 1
	}
	if st.Jamming {
		buf[4] |= 2
	}
	buf[5] = uint8(st.Owner)
	binary.LittleEndian.PutUint32(buf[6:10], st.Pending)
	binary.LittleEndian.PutUint32(buf[10:14], st.Dropped)
	buf[14] = st.Codes
	binary.LittleEndian.PutUint32(buf[15:19], st.JamFreqHz)
	return buf
}

func DecodeRFStatusRespPayload(b []byte) (requestID uint32, st RFStatus, ok bool) {
	if len(b) != 19 {
		return 0, RFStatus{}, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	st = RFStatus{
		Capturing: b[4]&1 != 0,
		Jamming:   b[4]&2 != 0,
		Owner:     RFOwner(b[5]),
		Pending:   binary.LittleEndian.Uint32(b[6:10]),
		Dropped:   binary.LittleEndian.Uint32(b[10:14]),
		Codes:     b[14],
		JamFreqHz: binary.LittleEndian.Uint32(b[15:19]),
	}
	return requestID, st, true
}

// RFDrainPayload encodes a MsgRFDrain request.
//
// Layout (little-endian):
//   - u32: request id
//   - u16: max samples (0 = everything pending)
func RFDrainPayload(requestID uint32, max uint16) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	binary.LittleEndian.PutUint16(buf[4:6], max)
	return buf
}

func DecodeRFDrainPayload(b []byte) (requestID uint32, max uint16, ok bool) {
	if len(b) != 6 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), binary.LittleEndian.Uint16(b[4:6]), true
}

// RFDrainRespPayload encodes one MsgRFDrainResp chunk.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: done flag (0/1)
//   - u8: sample count
//   - u32: dropped samples since capture start
//   - i32 * count: samples
func RFDrainRespPayload(requestID uint32, done bool, dropped uint32, samples []pulse.Sample) []byte {
	if len(samples) > RFDrainChunkSamples {
		samples = samples[:RFDrainChunkSamples]
	}
	buf := make([]byte, 10+4*len(samples))
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	if done {
		buf[4] = 1
	}
	buf[5] = uint8(len(samples))
	binary.LittleEndian.PutUint32(buf[6:10], dropped)
	putSamples(buf[10:], samples)
	return buf
}

func DecodeRFDrainRespPayload(b []byte, dst []pulse.Sample) (requestID uint32, done bool, dropped uint32, out []pulse.Sample, ok bool) {
	if len(b) < 10 {
		return 0, false, 0, dst, false
	}
	n := int(b[5])
	if 10+4*n != len(b) {
		return 0, false, 0, dst, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	done = b[4] != 0
	dropped = binary.LittleEndian.Uint32(b[6:10])
	return requestID, done, dropped, appendSamples(dst, b[10:]), true
}

// RFTxOpenPayload encodes a MsgRFTxOpen request that starts a raw upload.
//
// Layout (little-endian):
//   - u32: request id
//   - u16: total samples that will follow
//   - u16: repeats
//   - u32: gap between repeats (us)
func RFTxOpenPayload(requestID uint32, total, repeats uint16, gapUs uint32) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	binary.LittleEndian.PutUint16(buf[4:6], total)
	binary.LittleEndian.PutUint16(buf[6:8], repeats)
	binary.LittleEndian.PutUint32(buf[8:12], gapUs)
	return buf
}

func DecodeRFTxOpenPayload(b []byte) (requestID uint32, total, repeats uint16, gapUs uint32, ok bool) {
	if len(b) != 12 {
		return 0, 0, 0, 0, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	total = binary.LittleEndian.Uint16(b[4:6])
	repeats = binary.LittleEndian.Uint16(b[6:8])
	gapUs = binary.LittleEndian.Uint32(b[8:12])
	return requestID, total, repeats, gapUs, true
}

// RFTxChunkPayload encodes a MsgRFTxChunk request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: sample count
//   - i32 * count: samples
func RFTxChunkPayload(requestID uint32, samples []pulse.Sample) []byte {
	if len(samples) > RFTxChunkSamples {
		samples = samples[:RFTxChunkSamples]
	}
	buf := make([]byte, 5+4*len(samples))
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(len(samples))
	putSamples(buf[5:], samples)
	return buf
}

func DecodeRFTxChunkPayload(b []byte, dst []pulse.Sample) (requestID uint32, out []pulse.Sample, ok bool) {
	if len(b) < 5 {
		return 0, dst, false
	}
	n := int(b[4])
	if 5+4*n != len(b) {
		return 0, dst, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), appendSamples(dst, b[5:]), true
}

// RFTransmitCodePayload encodes a MsgRFTransmitCode request: encode code
// with the given protocol and send it.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: protocol id
//   - u8: bits
//   - u32: code
//   - u16: repeats
//   - u32: gap between repeats (us)
func RFTransmitCodePayload(requestID uint32, protocolID, bits uint8, code uint32, repeats uint16, gapUs uint32) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = protocolID
	buf[5] = bits
	binary.LittleEndian.PutUint32(buf[6:10], code)
	binary.LittleEndian.PutUint16(buf[10:12], repeats)
	binary.LittleEndian.PutUint32(buf[12:16], gapUs)
	return buf
}

func DecodeRFTransmitCodePayload(
	b []byte,
) (requestID uint32, protocolID, bits uint8, code uint32, repeats uint16, gapUs uint32, ok bool) {
	if len(b) != 16 {
		return 0, 0, 0, 0, 0, 0, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	protocolID = b[4]
	bits = b[5]
	code = binary.LittleEndian.Uint32(b[6:10])
	repeats = binary.LittleEndian.Uint16(b[10:12])
	gapUs = binary.LittleEndian.Uint32(b[12:16])
	return requestID, protocolID, bits, code, repeats, gapUs, true
}

// RFBruteStartPayload encodes a MsgRFBruteStart request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: protocol id
//   - u8: bits
func RFBruteStartPayload(requestID uint32, protocolID, bits uint8) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = protocolID
	buf[5] = bits
	return buf
}

func DecodeRFBruteStartPayload(b []byte) (requestID uint32, protocolID, bits uint8, ok bool) {
	if len(b) != 6 {
		return 0, 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), b[4], b[5], true
}

// RFProgress is the sweep snapshot carried by MsgRFBruteProgressResp.
type RFProgress struct {
	State            uint8
	ProtocolID       uint8
	Bits             uint8
	Current          uint64
	Total            uint64
	ETASeconds       uint64
	EstimatedSeconds uint64
	ElapsedSeconds   uint64
}

// RFBruteProgressRespPayload encodes a MsgRFBruteProgressResp response.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: state
//   - u8: protocol id (0 = none)
//   - u8: bits
//   - u64: current code
//   - u64: total codes
//   - u64: remaining seconds
//   - u64: estimated total seconds
//   - u64: elapsed running seconds
func RFBruteProgressRespPayload(requestID uint32, p RFProgress) []byte {
	buf := make([]byte, 47)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = p.State
	buf[5] = p.ProtocolID
	buf[6] = p.Bits
	binary.LittleEndian.PutUint64(buf[7:15], p.Current)
	binary.LittleEndian.PutUint64(buf[15:23], p.Total)
	binary.LittleEndian.PutUint64(buf[23:31], p.ETASeconds)
	binary.LittleEndian.PutUint64(buf[31:39], p.EstimatedSeconds)
	binary.LittleEndian.PutUint64(buf[39:47], p.ElapsedSeconds)
	return buf
}

func DecodeRFBruteProgressRespPayload(b []byte) (requestID uint32, p RFProgress, ok bool) {
	if len(b) != 47 {
		return 0, RFProgress{}, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	p = RFProgress{
		State:            b[4],
		ProtocolID:       b[5],
		Bits:             b[6],
		Current:          binary.LittleEndian.Uint64(b[7:15]),
		Total:            binary.LittleEndian.Uint64(b[15:23]),
		ETASeconds:       binary.LittleEndian.Uint64(b[23:31]),
		EstimatedSeconds: binary.LittleEndian.Uint64(b[31:39]),
		ElapsedSeconds:   binary.LittleEndian.Uint64(b[39:47]),
	}
	return requestID, p, true
}

// RFJamStartPayload encodes a MsgRFJamStart request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: PWM pin
//   - u32: frequency (Hz)
func RFJamStartPayload(requestID uint32, pin uint8, freqHz uint32) []byte {
	buf := make([]byte, 9)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = pin
	binary.LittleEndian.PutUint32(buf[5:9], freqHz)
	return buf
}

func DecodeRFJamStartPayload(b []byte) (requestID uint32, pin uint8, freqHz uint32, ok bool) {
	if len(b) != 9 {
		return 0, 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), b[4], binary.LittleEndian.Uint32(b[5:9]), true
}

// RFCode is one detected preamble-framed code.
type RFCode struct {
	Data         [9]byte
	Bits         uint8
	Keeloq       bool
	CapturedAtMs int64
}

// RFCodesRespPayload encodes one MsgRFCodesResp entry. The terminating
// message has done=1 and carries no code.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: done flag (0/1)
//   - u8: bits
//   - u8: flags (bit0 keeloq)
//   - i64: capture time (unix ms)
//   - [9]byte: code, MSB-first
func RFCodesRespPayload(requestID uint32, done bool, c RFCode) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	if done {
		buf[4] = 1
	}
	buf[5] = c.Bits
	if c.Keeloq {
		buf[6] = 1
	}
	binary.LittleEndian.PutUint64(buf[7:15], uint64(c.CapturedAtMs))
	copy(buf[15:24], c.Data[:])
	return buf
}

func DecodeRFCodesRespPayload(b []byte) (requestID uint32, done bool, c RFCode, ok bool) {
	if len(b) != 24 {
		return 0, false, RFCode{}, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	done = b[4] != 0
	c.Bits = b[5]
	c.Keeloq = b[6]&1 != 0
	c.CapturedAtMs = int64(binary.LittleEndian.Uint64(b[7:15]))
	copy(c.Data[:], b[15:24])
	return requestID, done, c, true
}

func putSamples(dst []byte, samples []pulse.Sample) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], uint32(int32(s)))
	}
}

func appendSamples(dst []pulse.Sample, b []byte) []pulse.Sample {
	for i := 0; i+4 <= len(b); i += 4 {
		dst = append(dst, pulse.Sample(int32(binary.LittleEndian.Uint32(b[i:i+4]))))
	}
	return dst
}
