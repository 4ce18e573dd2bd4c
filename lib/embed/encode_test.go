// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// decode reverses Encode: parse the hex literals, strip the
// terminating zero byte.
func decode(t *testing.T, encoded string) []byte {
	t.Helper()
	var payload []byte
	for _, line := range strings.Split(encoded, ",\n") {
		for _, literal := range strings.Split(line, ", ") {
			value, err := strconv.ParseUint(strings.TrimPrefix(literal, "0x"), 16, 8)
			if err != nil {
				t.Fatalf("bad literal %q: %v", literal, err)
			}
			payload = append(payload, byte(value))
		}
	}
	if len(payload) == 0 || payload[len(payload)-1] != 0 {
		t.Fatal("encoded payload does not end with the zero terminator")
	}
	return payload[:len(payload)-1]
}

func TestEncodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello"),
		{0x00, 0xff, 0x80, 0x7f},
		bytes.Repeat([]byte{0xab}, 100),
		[]byte(`[{"name":"a"},{"name":"b"}]`),
	}
	for _, payload := range payloads {
		got := decode(t, Encode(payload))
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip of %d bytes failed", len(payload))
		}
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	if Encode(nil) != "0x00" {
		t.Errorf("Encode(nil) = %q, want the lone terminator", Encode(nil))
	}
}

func TestEncodeLineWidth(t *testing.T) {
	// 32 payload bytes plus the terminator: two full lines of 16 and
	// one line holding the terminator.
	encoded := Encode(bytes.Repeat([]byte{0x01}, 32))
	lines := strings.Split(encoded, ",\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	for i, line := range lines[:2] {
		if count := strings.Count(line, "0x"); count != 16 {
			t.Errorf("line %d holds %d literals, want 16", i, count)
		}
	}
	if lines[2] != "0x00" {
		t.Errorf("final line = %q, want the terminator", lines[2])
	}
}

func TestEncodeLowercaseHex(t *testing.T) {
	encoded := Encode([]byte{0xAB, 0xCD})
	if encoded != "0xab, 0xcd, 0x00" {
		t.Errorf("Encode = %q", encoded)
	}
}

func TestEncodeStable(t *testing.T) {
	payload := []byte("stability matters for the content digest")
	if Encode(payload) != Encode(payload) {
		t.Error("Encode is not deterministic")
	}
}
