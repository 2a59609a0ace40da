package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordProducesFreshSalt(t *testing.T) {
	first, err := HashPassword("hunter2")
	require.NoError(t, err)
	second, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "$argon2id$"))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "correct horse battery stapl"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"not a hash":        "plaintext",
		"wrong algorithm":   "$bcrypt$v=19$m=65536,t=2,p=1$c2FsdA$ZGlnZXN0",
		"missing sections":  "$argon2id$v=19$m=65536,t=2,p=1",
		"bad salt encoding": "$argon2id$v=19$m=65536,t=2,p=1$!!!$ZGlnZXN0",
		"bad digest":        "$argon2id$v=19$m=65536,t=2,p=1$c2FsdA$!!!",
		"zero threads":      "$argon2id$v=19$m=65536,t=2,p=0$c2FsdA$ZGlnZXN0",
		"bad params":        "$argon2id$v=19$m=x,t=y,p=z$c2FsdA$ZGlnZXN0",
	}

	for name, hash := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword(hash, "whatever"))
		})
	}
}
