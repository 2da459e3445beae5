package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acp-checkout-gateway/internal/core/ports/testfakes"
	"acp-checkout-gateway/internal/signature"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHeaderEcho_GeneratesRequestIDWhenAbsent(t *testing.T) {
	var captured string
	r := gin.New()
	r.Use(HeaderEcho())
	r.GET("/test", func(c *gin.Context) {
		v, _ := c.Get(CtxRequestID)
		captured = v.(string)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, w.Header().Get(HeaderRequestID))
}

func TestHeaderEcho_EchoesIdempotencyKey(t *testing.T) {
	r := gin.New()
	r.Use(HeaderEcho())
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(HeaderIdempotencyKey, "idem-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "idem-123", w.Header().Get(HeaderIdempotencyKey))
}

func TestSignatureVerify_NilServiceDisablesCheck(t *testing.T) {
	r := gin.New()
	r.Use(SignatureVerify(nil))
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignatureVerify_RejectsMissingHeaders(t *testing.T) {
	svc := signature.New("secret", time.Minute)
	r := gin.New()
	r.Use(SignatureVerify(svc))
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignatureVerify_AcceptsValidSignature(t *testing.T) {
	svc := signature.New("secret", time.Minute)
	body := []byte(`{"foo":"bar"}`)
	ts := time.Now().Unix()
	sig := svc.Sign(ts, body)

	var echoedBody []byte
	r := gin.New()
	r.Use(SignatureVerify(svc))
	r.POST("/test", func(c *gin.Context) {
		echoedBody, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(string(body)))
	req.Header.Set(HeaderSignature, sig)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, echoedBody)
}

func TestSignatureVerify_RejectsTamperedBody(t *testing.T) {
	svc := signature.New("secret", time.Minute)
	ts := time.Now().Unix()
	sig := svc.Sign(ts, []byte(`{"foo":"bar"}`))

	r := gin.New()
	r.Use(SignatureVerify(svc))
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"foo":"tampered"}`))
	req.Header.Set(HeaderSignature, sig)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_NilVerifierDisablesCheck(t *testing.T) {
	r := gin.New()
	r.Use(BearerAuth(nil))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_RejectsMissingHeader(t *testing.T) {
	r := gin.New()
	r.Use(BearerAuth(&testfakes.AuthVerifier{}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_RejectsVerifierError(t *testing.T) {
	r := gin.New()
	r.Use(BearerAuth(&testfakes.AuthVerifier{Err: assertError{}}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAuthorization, "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_AcceptsValidToken(t *testing.T) {
	r := gin.New()
	r.Use(BearerAuth(&testfakes.AuthVerifier{}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAuthorization, "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_PanicRecovered(t *testing.T) {
	log := zerolog.Nop()

	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/panic", func(c *gin.Context) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "api_error", resp["error"]["code"])
}

type assertError struct{}

func (assertError) Error() string { return "verification failed" }
