package codedb

import (
	"strings"
	"testing"

	"multitool/sparkos/rf/encoder"
)

const sample = `brand,protocol_id,hex_code,bits
# garage remotes
Acme,1,0x155,12
Gate Co, 2, ABC, 12

Nice,3,7ff,12
Sony TV,20,A90,12
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if e := entries[0]; e.Brand != "Acme" || e.ProtocolID != 1 || e.Code != 0x155 || e.Bits != 12 {
		t.Fatalf("unexpected first entry %+v", e)
	}
	if e := entries[1]; e.Brand != "Gate Co" || e.Code != 0xABC {
		t.Fatalf("unexpected second entry %+v", e)
	}

	p, ok := entries[2].Protocol()
	if !ok || p != &encoder.NiceFLO {
		t.Fatalf("expected Nice FLO, got %v", p)
	}
	if _, ok := entries[3].Protocol(); ok {
		t.Fatal("IR row should not map to an RF protocol")
	}

	rf := RF(entries)
	if len(rf) != 3 {
		t.Fatalf("expected 3 RF entries, got %d", len(rf))
	}
	if got := rf[0].String(); got != "Acme 1/12 0x155" {
		t.Fatalf("unexpected String %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"Acme,1,zz,12\n",
		"Acme,x,155,12\n",
		"Acme,1,155,0\n",
		"Acme,1,155\n",
	}
	for _, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
