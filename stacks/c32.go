package stacks

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
)

// c32 is the Crockford-like base32 alphabet used by Stacks addresses.
// I, L, O and U are excluded to avoid misreading.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address version bytes. Single-sig versions map to the 'P'/'T' prefix
// characters, multisig to 'M'/'N'.
const (
	VersionMainnetP2PKH = 22
	VersionMainnetP2SH  = 20
	VersionTestnetP2PKH = 26
	VersionTestnetP2SH  = 21
)

var c32Value = func() map[byte]int {
	m := make(map[byte]int, len(c32Alphabet))
	for i := 0; i < len(c32Alphabet); i++ {
		m[c32Alphabet[i]] = i
	}
	return m
}()

// c32Encode renders data in base32, preserving leading zero bytes as '0'
// characters so the encoding round-trips byte-exact.
func c32Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	var sb strings.Builder
	for i := 0; i < zeros; i++ {
		sb.WriteByte('0')
	}

	n := new(big.Int).SetBytes(data)
	if n.Sign() == 0 {
		return sb.String()
	}

	base := big.NewInt(32)
	mod := new(big.Int)
	var digits []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
	}
	return sb.String()
}

// c32Decode is the inverse of c32Encode for a known output width.
func c32Decode(s string, width int) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == '0' {
		zeros++
	}

	n := new(big.Int)
	base := big.NewInt(32)
	for i := zeros; i < len(s); i++ {
		v, ok := c32Value[s[i]]
		if !ok {
			return nil, fmt.Errorf("invalid c32 character %q", s[i])
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(v)))
	}

	rest := n.Bytes()
	if zeros+len(rest) > width {
		return nil, fmt.Errorf("c32 payload longer than %d bytes", width)
	}

	out := make([]byte, width)
	copy(out[width-len(rest):], rest)
	return out, nil
}

func c32Checksum(version byte, hash160 []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, hash160...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

// EncodeAddress renders a version byte and hash160 as a Stacks address,
// e.g. EncodeAddress(22, zeros) -> "SP000000000000000000002Q6VF78".
func EncodeAddress(version byte, hash160 []byte) (string, error) {
	if len(hash160) != 20 {
		return "", fmt.Errorf("hash160 must be 20 bytes, got %d", len(hash160))
	}
	if int(version) >= len(c32Alphabet) {
		return "", fmt.Errorf("invalid address version %d", version)
	}

	payload := make([]byte, 0, 24)
	payload = append(payload, hash160...)
	payload = append(payload, c32Checksum(version, hash160)...)

	return "S" + string(c32Alphabet[version]) + c32Encode(payload), nil
}

// DecodeAddress parses a Stacks address into its version byte and hash160,
// verifying the checksum.
func DecodeAddress(addr string) (byte, []byte, error) {
	if len(addr) < 2 || addr[0] != 'S' {
		return 0, nil, fmt.Errorf("malformed stacks address %q", addr)
	}

	version, ok := c32Value[addr[1]]
	if !ok {
		return 0, nil, fmt.Errorf("invalid address version character %q", addr[1])
	}

	payload, err := c32Decode(addr[2:], 24)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed stacks address %q: %w", addr, err)
	}

	hash160 := payload[:20]
	checksum := payload[20:]
	expected := c32Checksum(byte(version), hash160)
	for i := range checksum {
		if checksum[i] != expected[i] {
			return 0, nil, fmt.Errorf("bad checksum in stacks address %q", addr)
		}
	}

	return byte(version), hash160, nil
}
