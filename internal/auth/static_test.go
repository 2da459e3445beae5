package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBearer_Verify_CorrectToken(t *testing.T) {
	b, err := NewStaticBearer("s3cret-token")
	require.NoError(t, err)

	assert.NoError(t, b.Verify(context.Background(), "s3cret-token"))
}

func TestStaticBearer_Verify_WrongToken(t *testing.T) {
	b, err := NewStaticBearer("s3cret-token")
	require.NoError(t, err)

	assert.Error(t, b.Verify(context.Background(), "wrong-token"))
}

func TestStaticBearer_Verify_EmptyCredential(t *testing.T) {
	b, err := NewStaticBearer("s3cret-token")
	require.NoError(t, err)

	assert.Error(t, b.Verify(context.Background(), ""))
}

func TestStaticBearer_DifferentInstancesUseDifferentSalts(t *testing.T) {
	a, err := NewStaticBearer("same-token")
	require.NoError(t, err)
	b, err := NewStaticBearer("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, a.hash, b.hash)
	assert.NoError(t, a.Verify(context.Background(), "same-token"))
	assert.NoError(t, b.Verify(context.Background(), "same-token"))
}
