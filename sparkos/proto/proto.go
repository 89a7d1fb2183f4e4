package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgSleep
	MsgWake
	MsgError

	MsgVFSList
	MsgVFSListResp
	MsgVFSRemove
	MsgVFSRemoveResp
	MsgVFSStat
	MsgVFSStatResp
	MsgVFSRead
	MsgVFSReadResp
	MsgVFSWriteOpen
	MsgVFSWriteChunk
	MsgVFSWriteClose
	MsgVFSWriteResp

	MsgRFAck
	MsgRFStatus
	MsgRFStatusResp
	MsgRFCaptureStart
	MsgRFCaptureStop
	MsgRFDrain
	MsgRFDrainResp
	MsgRFTxOpen
	MsgRFTxChunk
	MsgRFTxCommit
	MsgRFTransmitCode
	MsgRFBruteStart
	MsgRFBrutePause
	MsgRFBruteResume
	MsgRFBruteAbort
	MsgRFBruteProgress
	MsgRFBruteProgressResp
	MsgRFJamStart
	MsgRFJamStop
	MsgRFCodes
	MsgRFCodesResp
	MsgRFCodesClear
)

// ErrCode is a generic error category for MsgError responses.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrUnauthorized
	ErrNotFound
	ErrBusy
	ErrOverflow
	ErrTooLarge
	ErrInternal
	ErrHardware
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrNotFound:
		return "not_found"
	case ErrBusy:
		return "busy"
	case ErrOverflow:
		return "overflow"
	case ErrTooLarge:
		return "too_large"
	case ErrInternal:
		return "internal"
	case ErrHardware:
		return "hardware"
	default:
		return "unknown"
	}
}

var kindNames = [...]string{
	MsgLogLine: "log_line",
	MsgSleep:   "sleep",
	MsgWake:    "wake",
	MsgError:   "error",

	MsgVFSList:       "vfs_list",
	MsgVFSListResp:   "vfs_list_resp",
	MsgVFSRemove:     "vfs_remove",
	MsgVFSRemoveResp: "vfs_remove_resp",
	MsgVFSStat:       "vfs_stat",
	MsgVFSStatResp:   "vfs_stat_resp",
	MsgVFSRead:       "vfs_read",
	MsgVFSReadResp:   "vfs_read_resp",
	MsgVFSWriteOpen:  "vfs_write_open",
	MsgVFSWriteChunk: "vfs_write_chunk",
	MsgVFSWriteClose: "vfs_write_close",
	MsgVFSWriteResp:  "vfs_write_resp",

	MsgRFAck:               "rf_ack",
	MsgRFStatus:            "rf_status",
	MsgRFStatusResp:        "rf_status_resp",
	MsgRFCaptureStart:      "rf_capture_start",
	MsgRFCaptureStop:       "rf_capture_stop",
	MsgRFDrain:             "rf_drain",
	MsgRFDrainResp:         "rf_drain_resp",
	MsgRFTxOpen:            "rf_tx_open",
	MsgRFTxChunk:           "rf_tx_chunk",
	MsgRFTxCommit:          "rf_tx_commit",
	MsgRFTransmitCode:      "rf_transmit_code",
	MsgRFBruteStart:        "rf_brute_start",
	MsgRFBrutePause:        "rf_brute_pause",
	MsgRFBruteResume:       "rf_brute_resume",
	MsgRFBruteAbort:        "rf_brute_abort",
	MsgRFBruteProgress:     "rf_brute_progress",
	MsgRFBruteProgressResp: "rf_brute_progress_resp",
	MsgRFJamStart:          "rf_jam_start",
	MsgRFJamStop:           "rf_jam_stop",
	MsgRFCodes:             "rf_codes",
	MsgRFCodesResp:         "rf_codes_resp",
	MsgRFCodesClear:        "rf_codes_clear",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
