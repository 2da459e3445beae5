package signature

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SignAndVerify_RoundTrip(t *testing.T) {
	svc := New("shared-secret", 0)
	body := []byte(`{"hello":"world"}`)
	ts := time.Now().Unix()
	sig := svc.Sign(ts, body)

	err := svc.Verify(sig, strconv.FormatInt(ts, 10), body)
	require.NoError(t, err)
}

func TestService_Verify_RejectsTamperedBody(t *testing.T) {
	svc := New("shared-secret", 0)
	ts := time.Now().Unix()
	sig := svc.Sign(ts, []byte("original"))

	err := svc.Verify(sig, strconv.FormatInt(ts, 10), []byte("tampered"))
	assert.Error(t, err)
}

func TestService_Verify_RejectsStaleTimestamp(t *testing.T) {
	svc := New("shared-secret", 5*time.Second)
	body := []byte("payload")
	staleTs := time.Now().Add(-1 * time.Hour).Unix()
	sig := svc.Sign(staleTs, body)

	err := svc.Verify(sig, strconv.FormatInt(staleTs, 10), body)
	assert.Error(t, err)
}

func TestService_Verify_MissingHeaders(t *testing.T) {
	svc := New("shared-secret", 0)
	assert.Error(t, svc.Verify("", "123", []byte("x")))
	assert.Error(t, svc.Verify("abc", "", []byte("x")))
}

func TestBuildSignedPayload(t *testing.T) {
	payload := BuildSignedPayload(1700000000, []byte("body"))
	assert.Equal(t, "1700000000.body", string(payload))
}

func TestHeaderName(t *testing.T) {
	assert.Equal(t, "Acme-Store-Signature", HeaderName("Acme Store"))
	assert.Equal(t, "Webhook-Signature", HeaderName(""))
}
