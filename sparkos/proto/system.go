package proto

// LogLinePayload copies b into a MsgLogLine payload: UTF-8 without a
// trailing newline. Delivery is best-effort.
func LogLinePayload(b []byte) []byte {
	if b == nil {
		return nil
	}
	return newEnc(len(b)).raw(b)
}

// SleepPayload encodes MsgSleep: u32 request id, u32 ticks to wait.
func SleepPayload(requestID uint32, dt uint32) []byte {
	return newEnc(8).u32(requestID).u32(dt)
}

func DecodeSleepPayload(payload []byte) (requestID uint32, dt uint32, ok bool) {
	d := dec{b: payload}
	requestID, dt = d.u32(), d.u32()
	if !d.end() {
		return 0, 0, false
	}
	return requestID, dt, true
}

// WakePayload encodes MsgWake: the u32 request id of the finished sleep.
func WakePayload(requestID uint32) []byte {
	return newEnc(4).u32(requestID)
}

func DecodeWakePayload(payload []byte) (requestID uint32, ok bool) {
	d := dec{b: payload}
	requestID = d.u32()
	return requestID, d.end()
}

// ErrorPayload encodes MsgError.
//
// Layout (little-endian):
//   - u16: code
//   - u16: ref kind (the request kind that failed)
//   - bytes: detail, usually ErrorDetailWithRequestID
func ErrorPayload(code ErrCode, ref Kind, detail []byte) []byte {
	return newEnc(4 + len(detail)).u16(uint16(code)).u16(uint16(ref)).raw(detail)
}

func DecodeErrorPayload(payload []byte) (code ErrCode, ref Kind, detail []byte, ok bool) {
	d := dec{b: payload}
	code, ref = ErrCode(d.u16()), Kind(d.u16())
	if d.bad {
		return 0, 0, nil, false
	}
	return code, ref, d.rest(), true
}

// ErrorDetailWithRequestID prefixes a human-readable detail with the id of
// the failed request so clients can match errors to calls.
func ErrorDetailWithRequestID(requestID uint32, detail []byte) []byte {
	return newEnc(4 + len(detail)).u32(requestID).raw(detail)
}

func DecodeErrorDetailWithRequestID(detail []byte) (requestID uint32, rest []byte, ok bool) {
	d := dec{b: detail}
	requestID = d.u32()
	if d.bad {
		return 0, nil, false
	}
	return requestID, d.rest(), true
}
