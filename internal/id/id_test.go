package id_test

import (
	"strings"
	"testing"

	"github.com/medialogapp/medialog-server/internal/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := id.Generate("li")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "li-"))
	// prefix + dash + 21-char nanoid
	assert.Len(t, got, len("li-")+21)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := id.Generate("pr")
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate ID generated: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		got := id.MustGenerate("ach")
		assert.True(t, strings.HasPrefix(got, "ach-"))
	})
}
