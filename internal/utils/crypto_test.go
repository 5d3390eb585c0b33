package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	code, err := RandomCode(12, 4)
	require.NoError(t, err)

	groups := strings.Split(code, "-")
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Len(t, g, 4)
		for _, ch := range g {
			assert.Contains(t, CodeAlphabet, string(ch))
		}
	}

	plain, err := RandomCode(9, 0)
	require.NoError(t, err)
	assert.Len(t, plain, 9)
	assert.NotContains(t, plain, "-")

	_, err = RandomCode(0, 4)
	assert.Error(t, err)
}

func TestRandomCodeAvoidsLookalikes(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := RandomCode(32, 0)
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(code, "0O1IL"), code)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("hash-one", 16)
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint("hash-one", 16))
	assert.NotEqual(t, a, Fingerprint("hash-two", 16))
	assert.Len(t, Fingerprint("hash-one", 0), 64)
}
