package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("   ")
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := New("unit-test-secret")
	require.NoError(t, err)

	for _, plain := range []string{
		"ghp_abcdef0123456789",
		"x",
		"exactly-16-bytes",
		strings.Repeat("token", 100),
	} {
		sealed, err := v.Encrypt(plain)
		require.NoError(t, err)
		assert.NotContains(t, sealed, plain)

		got, err := v.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestEncryptPayloadFormat(t *testing.T) {
	v, err := New("unit-test-secret")
	require.NoError(t, err)

	sealed, err := v.Encrypt("ghp_secret")
	require.NoError(t, err)

	parts := strings.Split(sealed, ":")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 32, "iv is 16 bytes hex-encoded")
	assert.Equal(t, 0, len(parts[1])%32, "ciphertext is whole aes blocks hex-encoded")
}

func TestDecryptEmptyPayload(t *testing.T) {
	v, err := New("unit-test-secret")
	require.NoError(t, err)

	got, err := v.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestDecryptMalformedPayloads(t *testing.T) {
	v, err := New("unit-test-secret")
	require.NoError(t, err)

	valid, err := v.Encrypt("ghp_secret")
	require.NoError(t, err)
	iv := strings.Split(valid, ":")[0]

	for name, payload := range map[string]string{
		"no separator":         "deadbeef",
		"too many parts":       "aa:bb:cc",
		"non-hex iv":           "zz:" + strings.Repeat("ab", 16),
		"short iv":             "abcd:" + strings.Repeat("ab", 16),
		"non-hex cipher":       iv + ":zz",
		"empty cipher":         iv + ":",
		"partial cipher block": iv + ":" + strings.Repeat("ab", 15),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Decrypt(payload)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	a, err := New("secret-a")
	require.NoError(t, err)
	b, err := New("secret-b")
	require.NoError(t, err)

	sealed, err := a.Encrypt("ghp_secret")
	require.NoError(t, err)

	got, err := b.Decrypt(sealed)
	if err == nil {
		// Padding can coincidentally validate; the plaintext still must not
		// survive a wrong key.
		assert.NotEqual(t, "ghp_secret", got)
	} else {
		assert.ErrorIs(t, err, ErrMalformed)
	}
}

func TestSameSecretSameKey(t *testing.T) {
	a, err := New("shared-secret")
	require.NoError(t, err)
	b, err := New("shared-secret")
	require.NoError(t, err)

	sealed, err := a.Encrypt("ghp_secret")
	require.NoError(t, err)

	got, err := b.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", got)
}
