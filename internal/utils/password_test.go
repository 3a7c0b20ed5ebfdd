package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("S3cret!velora")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("S3cret!velora", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	h1, err := HashPassword("meme-mot-de-passe")
	require.NoError(t, err)
	h2, err := HashPassword("meme-mot-de-passe")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"pas-un-hash",
		"$bcrypt$v=19$m=32768,t=1,p=4$abc$def",
		"$argon2id$v=19$m=32768,t=1,p=4$%%%$def",
	} {
		ok, err := VerifyPassword("peu-importe", hash)
		require.Error(t, err, hash)
		require.False(t, ok)
	}
}
