package encoder

import (
	"strconv"
	"strings"
)

// Sync placement within a frame.
type SyncPlacement uint8

const (
	SyncAfter SyncPlacement = iota
	SyncBefore
)

// Protocol describes a fixed-code OOK line encoding. Every protocol shares
// one algorithm: bit 0 is +Short/-Long, bit 1 is +Long/-Short, each repeated
// PairsPerBit times, and a +Short/-SyncLow sync pulse placed before or after
// the data bits.
type Protocol struct {
	ID          uint8
	Name        string
	Short       uint32
	Long        uint32
	SyncLow     uint32
	Sync        SyncPlacement
	PairsPerBit int
	// BitCounts lists the nominal frame widths, smallest first.
	BitCounts []int
}

var (
	PT2262 = Protocol{
		ID:          1,
		Name:        "PT2262",
		Short:       350,
		Long:        1050,
		SyncLow:     10850,
		Sync:        SyncAfter,
		PairsPerBit: 2,
		BitCounts:   []int{10, 12, 24},
	}
	CAME = Protocol{
		ID:          2,
		Name:        "CAME",
		Short:       320,
		Long:        640,
		SyncLow:     9920,
		Sync:        SyncBefore,
		PairsPerBit: 1,
		BitCounts:   []int{12},
	}
	NiceFLO = Protocol{
		ID:          3,
		Name:        "Nice FLO",
		Short:       700,
		Long:        1400,
		SyncLow:     25200,
		Sync:        SyncBefore,
		PairsPerBit: 1,
		BitCounts:   []int{12},
	}
)

// Protocols is the descriptor table in menu order.
var Protocols = []*Protocol{&PT2262, &CAME, &NiceFLO}

// Supports reports whether bits is one of the protocol's nominal widths.
func (p *Protocol) Supports(bits int) bool {
	for _, b := range p.BitCounts {
		if b == bits {
			return true
		}
	}
	return false
}

// DefaultBits is the first nominal width.
func (p *Protocol) DefaultBits() int {
	if len(p.BitCounts) == 0 {
		return 0
	}
	return p.BitCounts[0]
}

// FrameLen is the number of samples a full frame of bits occupies.
func (p *Protocol) FrameLen(bits int) int {
	return bits*2*p.PairsPerBit + 2
}

func (p *Protocol) String() string { return p.Name }

// ByID looks up a descriptor by its numeric id.
func ByID(id uint8) (*Protocol, bool) {
	for _, p := range Protocols {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ByName looks up a descriptor by name, ignoring case, spaces, dashes and
// underscores ("nice-flo", "NiceFLO" and "Nice FLO" all match).
func ByName(name string) (*Protocol, bool) {
	want := foldName(name)
	for _, p := range Protocols {
		if foldName(p.Name) == want {
			return p, true
		}
	}
	return nil, false
}

func foldName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseCode parses a radix-16 code as used by code databases. An optional
// 0x prefix is accepted.
func ParseCode(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
