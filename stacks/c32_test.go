package stacks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAddressZeroHash(t *testing.T) {
	// The well-known burn address: version 22 with an all-zero hash160.
	addr, err := EncodeAddress(VersionMainnetP2PKH, make([]byte, 20))
	require.NoError(t, err)
	assert.Equal(t, "SP000000000000000000002Q6VF78", addr)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hashes := [][]byte{
		make([]byte, 20),
		bytes.Repeat([]byte{0x11}, 20),
		bytes.Repeat([]byte{0xff}, 20),
		append(make([]byte, 3), bytes.Repeat([]byte{0xab}, 17)...),
	}
	versions := []byte{VersionMainnetP2PKH, VersionMainnetP2SH, VersionTestnetP2PKH, VersionTestnetP2SH}

	for _, version := range versions {
		for _, hash160 := range hashes {
			addr, err := EncodeAddress(version, hash160)
			require.NoError(t, err)

			gotVersion, gotHash, err := DecodeAddress(addr)
			require.NoError(t, err, "addr %s", addr)
			assert.Equal(t, version, gotVersion)
			assert.Equal(t, hash160, gotHash)
		}
	}
}

func TestDecodeAddressRejectsCorruption(t *testing.T) {
	addr, err := EncodeAddress(VersionTestnetP2PKH, bytes.Repeat([]byte{0x11}, 20))
	require.NoError(t, err)

	// Flip the final character to break the checksum. Pick a replacement
	// that is still a valid c32 character.
	last := addr[len(addr)-1]
	replacement := byte('3')
	if last == replacement {
		replacement = '4'
	}
	corrupted := addr[:len(addr)-1] + string(replacement)

	_, _, err = DecodeAddress(corrupted)
	assert.Error(t, err)
}

func TestDecodeAddressRejectsMalformed(t *testing.T) {
	for _, addr := range []string{"", "S", "X000", "SP0000OO00", "SPhello"} {
		_, _, err := DecodeAddress(addr)
		assert.Error(t, err, "input %q", addr)
	}
}

func TestEncodeAddressRejectsBadHashLength(t *testing.T) {
	_, err := EncodeAddress(VersionMainnetP2PKH, make([]byte, 19))
	assert.Error(t, err)
}
