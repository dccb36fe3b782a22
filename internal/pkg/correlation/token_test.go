package correlation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		handle string
		domain string
	}{
		{"user-42", "example.com"},
		{"a1b2c3", "shop.example.co.uk"},
		{"handle_with_underscore", "store.example.org"},
	}
	for _, tc := range cases {
		handle, domain, err := Decode(Encode(tc.handle, tc.domain))
		require.NoError(t, err)
		assert.Equal(t, tc.handle, handle)
		assert.Equal(t, tc.domain, domain)
	}
}

func TestDecodeSplitsOnFirstSeparator(t *testing.T) {
	// The domain side may itself contain a double underscore only if the
	// upstream mangled it; the split must always happen at the first one.
	handle, domain, err := Decode("abc__example.com__extra")
	require.NoError(t, err)
	assert.Equal(t, "abc", handle)
	assert.Equal(t, "example.com__extra", domain)
}

func TestDecodeFallbackRecoversTrailingDomain(t *testing.T) {
	// Upstream stripped the separator: domain directly appended. The handle
	// ends in a character outside the domain alphabet, so the domain is
	// recoverable.
	handle, domain, err := Decode("user!example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
	assert.Equal(t, "user", handle)

	// Same domain as the well-formed token carrying the same parts.
	_, wellFormed, err := Decode(Encode("user!", "example.com"))
	require.NoError(t, err)
	assert.Equal(t, wellFormed, domain)
}

func TestDecodeFallbackAmbiguousTokenFails(t *testing.T) {
	// Every character is domain-legal, so the trailing-domain pattern
	// swallows the whole token and no handle remains. Guessing a store
	// identity here is worse than failing.
	_, _, err := Decode("12345example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestDecodeFallbackStripsForeignCharacters(t *testing.T) {
	handle, domain, err := Decode("user 42!store.example.org")
	require.NoError(t, err)
	assert.Equal(t, "store.example.org", domain)
	assert.Equal(t, "user42", handle)
}

func TestDecodeFailsWithoutDomain(t *testing.T) {
	for _, token := range []string{"", "justahandle", "nodomainhere42"} {
		_, _, err := Decode(token)
		require.Error(t, err, token)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), token)
	}
}
