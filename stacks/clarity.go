package stacks

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Clarity wire-format type prefixes, per SIP-005.
const (
	clarityTypeUInt              = 0x01
	clarityTypeStandardPrincipal = 0x05
	clarityTypeResponseOk        = 0x07
	clarityTypeStringASCII       = 0x0d
)

// ClarityUInt serializes an unsigned 128-bit Clarity integer.
func ClarityUInt(v uint64) []byte {
	out := make([]byte, 17)
	out[0] = clarityTypeUInt
	binary.BigEndian.PutUint64(out[9:], v)
	return out
}

// ClarityStringASCII serializes a Clarity string-ascii value.
func ClarityStringASCII(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return nil, fmt.Errorf("non-ascii character at position %d", i)
		}
	}

	out := make([]byte, 5+len(s))
	out[0] = clarityTypeStringASCII
	binary.BigEndian.PutUint32(out[1:], uint32(len(s)))
	copy(out[5:], s)
	return out, nil
}

// ClarityStandardPrincipal serializes a standard principal from its
// c32-encoded address form.
func ClarityStandardPrincipal(addr string) ([]byte, error) {
	version, hash160, err := DecodeAddress(addr)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 22)
	out = append(out, clarityTypeStandardPrincipal, version)
	out = append(out, hash160...)
	return out, nil
}

// ParseClarityUInt extracts the integer from a serialized Clarity uint,
// unwrapping a surrounding (ok ...) response if present. Used to read
// balances returned by read-only contract calls.
func ParseClarityUInt(data []byte) (uint64, error) {
	if len(data) > 0 && data[0] == clarityTypeResponseOk {
		data = data[1:]
	}
	if len(data) != 17 || data[0] != clarityTypeUInt {
		return 0, fmt.Errorf("not a clarity uint (%d bytes)", len(data))
	}

	v := new(big.Int).SetBytes(data[1:])
	if !v.IsUint64() {
		return 0, fmt.Errorf("clarity uint overflows uint64")
	}
	return v.Uint64(), nil
}
