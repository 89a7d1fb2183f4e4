// Package codedb reads code databases of brand,protocol_id,hex_code,bits
// rows.
package codedb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"multitool/sparkos/rf/encoder"
)

// Entry is one database row.
type Entry struct {
	Brand      string
	ProtocolID uint8
	Code       uint32
	Bits       int
}

// Protocol maps the row onto an RF descriptor. Rows whose id is not an RF
// protocol (IR tables share the format) report false.
func (e Entry) Protocol() (*encoder.Protocol, bool) {
	return encoder.ByID(e.ProtocolID)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %d/%d 0x%0*X", e.Brand, e.ProtocolID, e.Bits, (e.Bits+3)/4, e.Code)
}

// Parse reads every row of r. A leading "brand,..." header row, blank lines
// and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var out []Entry
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("codedb: %w", err)
		}
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "brand") {
			continue
		}
		e, err := parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return out, fmt.Errorf("codedb: line %d: %w", line, err)
		}
		out = append(out, e)
	}
}

func parseRecord(rec []string) (Entry, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 8)
	if err != nil {
		return Entry{}, fmt.Errorf("protocol id %q: %w", rec[1], err)
	}
	code, err := encoder.ParseCode(rec[2])
	if err != nil {
		return Entry{}, fmt.Errorf("code %q: %w", rec[2], err)
	}
	bits, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return Entry{}, fmt.Errorf("bits %q: %w", rec[3], err)
	}
	if bits < 1 || bits > 32 {
		return Entry{}, fmt.Errorf("bits %d out of range", bits)
	}
	return Entry{
		Brand:      strings.TrimSpace(rec[0]),
		ProtocolID: uint8(id),
		Code:       code,
		Bits:       bits,
	}, nil
}

// RF filters entries down to those with an RF descriptor and a width the
// encoder accepts.
func RF(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if _, ok := e.Protocol(); ok && e.Bits <= encoder.MaxBits {
			out = append(out, e)
		}
	}
	return out
}
