package kdfchain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageKeyDeterministic(t *testing.T) {
	ck := bytes.Repeat([]byte{0x42}, KeySize)

	mk1, next1 := MessageKey(ck)
	mk2, next2 := MessageKey(ck)

	assert.Equal(t, mk1, mk2)
	assert.Equal(t, next1, next2)
	assert.Len(t, mk1, KeySize)
	assert.Len(t, next1, KeySize)
}

func TestMessageKeyOutputsIndependent(t *testing.T) {
	ck := bytes.Repeat([]byte{0x42}, KeySize)

	mk, next := MessageKey(ck)

	assert.NotEqual(t, mk, next)
	assert.NotEqual(t, ck, mk)
	assert.NotEqual(t, ck, next)
}

// Advancing the chain is one-way: no chain key or message key ever repeats,
// so holding the chain key at step n reveals nothing about earlier steps.
func TestChainAdvanceNeverRepeats(t *testing.T) {
	ck := bytes.Repeat([]byte{0x07}, KeySize)

	seen := map[string]bool{string(ck): true}
	for i := 0; i < 64; i++ {
		mk, next := MessageKey(ck)
		require.False(t, seen[string(mk)], "message key repeated at step %d", i)
		require.False(t, seen[string(next)], "chain key repeated at step %d", i)
		seen[string(mk)] = true
		seen[string(next)] = true
		ck = next
	}
}

func TestRootStep(t *testing.T) {
	root := bytes.Repeat([]byte{0x01}, KeySize)
	dh := bytes.Repeat([]byte{0x02}, KeySize)

	newRoot, chain := RootStep(root, dh)

	assert.Len(t, newRoot, KeySize)
	assert.Len(t, chain, KeySize)
	assert.NotEqual(t, root, newRoot)
	assert.NotEqual(t, newRoot, chain)

	// Same inputs, same outputs.
	newRoot2, chain2 := RootStep(root, dh)
	assert.Equal(t, newRoot, newRoot2)
	assert.Equal(t, chain, chain2)

	// Different DH output, different everything.
	dh[0] ^= 0xff
	newRoot3, chain3 := RootStep(root, dh)
	assert.NotEqual(t, newRoot, newRoot3)
	assert.NotEqual(t, chain, chain3)
}

func TestShortKeyPanics(t *testing.T) {
	assert.Panics(t, func() { MessageKey([]byte("short")) })
	assert.Panics(t, func() { RootStep([]byte("short"), bytes.Repeat([]byte{0}, KeySize)) })
	assert.Panics(t, func() { RootStep(bytes.Repeat([]byte{0}, KeySize), nil) })
}
