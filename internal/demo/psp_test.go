package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acp-checkout-gateway/internal/core/ports"
)

func TestPSP_Authorize_Success(t *testing.T) {
	p := NewPSP("")
	result, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_good"})
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.NotEmpty(t, result.IntentID)
}

func TestPSP_Authorize_DeclineToken(t *testing.T) {
	p := NewPSP("tok_decline")
	result, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_decline"})
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestPSP_Authorize_NoCredential(t *testing.T) {
	p := NewPSP("")
	result, err := p.Authorize(context.Background(), ports.AuthorizeRequest{})
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestPSP_Capture_Success(t *testing.T) {
	p := NewPSP("")
	auth, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_good"})
	require.NoError(t, err)

	cap, err := p.Capture(context.Background(), auth.IntentID)
	require.NoError(t, err)
	assert.True(t, cap.OK)
}

func TestPSP_Capture_AfterVoidFails(t *testing.T) {
	p := NewPSP("")
	auth, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_good"})
	require.NoError(t, err)

	require.NoError(t, p.Void(context.Background(), auth.IntentID))

	cap, err := p.Capture(context.Background(), auth.IntentID)
	require.NoError(t, err)
	assert.False(t, cap.OK)
}

func TestPSP_Void_AfterCaptureFails(t *testing.T) {
	p := NewPSP("")
	auth, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_good"})
	require.NoError(t, err)

	_, err = p.Capture(context.Background(), auth.IntentID)
	require.NoError(t, err)

	err = p.Void(context.Background(), auth.IntentID)
	assert.Error(t, err)
}

func TestPSP_CaptureCallCount_TracksEveryInvocation(t *testing.T) {
	p := NewPSP("")
	auth, err := p.Authorize(context.Background(), ports.AuthorizeRequest{DelegatedToken: "tok_good"})
	require.NoError(t, err)

	assert.Equal(t, 0, p.CaptureCallCount())
	_, err = p.Capture(context.Background(), auth.IntentID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CaptureCallCount())
}
