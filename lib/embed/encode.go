// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"fmt"
	"strings"
)

// literalsPerLine is the fixed line width of the generated byte
// arrays. Purely a readability and diff-stability convention, but it
// is part of the encoded text the digest covers, so it must never
// change silently.
const literalsPerLine = 16

// Encode renders payload as comma-separated two-digit lowercase hex
// literals with a terminating zero byte, 16 literals per line. Lines
// are joined with ",\n" and literals within a line with ", ".
func Encode(payload []byte) string {
	literals := make([]string, 0, len(payload)+1)
	for _, b := range payload {
		literals = append(literals, fmt.Sprintf("0x%02x", b))
	}
	literals = append(literals, "0x00")

	var lines []string
	for start := 0; start < len(literals); start += literalsPerLine {
		end := min(start+literalsPerLine, len(literals))
		lines = append(lines, strings.Join(literals[start:end], ", "))
	}
	return strings.Join(lines, ",\n")
}
