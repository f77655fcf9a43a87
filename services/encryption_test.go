package services

import (
	"testing"

	"safeher/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012"

func TestPhoneCipherRoundTrip(t *testing.T) {
	c, err := NewPhoneCipher(testKey)
	require.NoError(t, err)

	ct, err := c.Encrypt("9876543210")
	require.NoError(t, err)
	assert.NotContains(t, ct, "9876543210")
	assert.Contains(t, ct, ":")

	plain, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", plain)
}

func TestPhoneCipherFreshNonce(t *testing.T) {
	c, err := NewPhoneCipher(testKey)
	require.NoError(t, err)

	a, _ := c.Encrypt("9876543210")
	b, _ := c.Encrypt("9876543210")
	assert.NotEqual(t, a, b)
}

func TestPhoneCipherRejectsBadInput(t *testing.T) {
	c, err := NewPhoneCipher(testKey)
	require.NoError(t, err)

	good, err := c.Encrypt("9876543210")
	require.NoError(t, err)
	tampered := good[:len(good)-2] + "00"
	if tampered == good {
		tampered = good[:len(good)-2] + "11"
	}

	for name, ct := range map[string]string{
		"no separator": "deadbeef",
		"bad hex":      "zz:zz",
		"short nonce":  "abcd:abcd",
		"tampered":     tampered,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(ct)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindEncryption))
		})
	}
}

func TestPhoneCipherKeyLength(t *testing.T) {
	_, err := NewPhoneCipher("short")
	assert.Error(t, err)
}

func TestPhoneHash(t *testing.T) {
	c, err := NewPhoneCipher(testKey)
	require.NoError(t, err)

	assert.Equal(t, c.Hash("98765 43210"), c.Hash("9876543210"))
	assert.NotEqual(t, c.Hash("9876543210"), c.Hash("9876543211"))
}
