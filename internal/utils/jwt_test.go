package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 42, "HOST", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	id, kind, err := ParseAccessToken("test-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "HOST", kind)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 42, "USER", 15)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("other-secret", tok.Token)
	assert.Error(t, err)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	_, _, err := ParseAccessToken("test-secret", "not.a.token")
	assert.Error(t, err)
}
