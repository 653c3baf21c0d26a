package vn200

import (
	"fmt"

	"github.com/dstockhouse/mrfusion/checksum"
)

// BuildCommand frames body as "$body*HH\r\n" with HH the hex XOR-8 over
// body, or "$body*XX\r\n" (a literal, unchecked trailer) when checked is
// false. Init sends every command in the checked form.
func BuildCommand(body string, checked bool) []byte {
	if !checked {
		return []byte(fmt.Sprintf("$%s*XX\r\n", body))
	}
	chk := checksum.XOR8([]byte(body))
	return []byte(fmt.Sprintf("$%s*%02X\r\n", body, chk))
}
