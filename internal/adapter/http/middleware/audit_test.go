package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acp-checkout-gateway/internal/core/ports/testfakes"
)

func TestAuditLog_RecordsSuccessfulWrite(t *testing.T) {
	sink := &testfakes.AuditSink{}

	r := gin.New()
	r.Use(AuditLog(sink))
	r.POST("/checkout_sessions/:id/complete", func(c *gin.Context) {
		c.Set(CtxRequestID, "req_1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout_sessions/sess_1/complete", nil)
	r.ServeHTTP(w, req)

	require.Len(t, sink.All(), 1)
	entry := sink.All()[0]
	assert.Equal(t, "complete", entry.Operation)
	assert.Equal(t, "sess_1", entry.SessionID)
	assert.Equal(t, "ok", entry.Status)
	assert.Equal(t, "req_1", entry.RequestID)
}

func TestAuditLog_RecordsErrorCode(t *testing.T) {
	sink := &testfakes.AuditSink{}

	r := gin.New()
	r.Use(AuditLog(sink))
	r.POST("/checkout_sessions", func(c *gin.Context) {
		c.Set(CtxErrorCode, "validation_error")
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout_sessions", nil)
	r.ServeHTTP(w, req)

	require.Len(t, sink.All(), 1)
	assert.Equal(t, "error", sink.All()[0].Status)
	assert.Equal(t, "validation_error", sink.All()[0].ErrorCode)
}

func TestAuditLog_SkipsGET(t *testing.T) {
	sink := &testfakes.AuditSink{}

	r := gin.New()
	r.Use(AuditLog(sink))
	r.GET("/checkout_sessions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/checkout_sessions/sess_1", nil)
	r.ServeHTTP(w, req)

	assert.Empty(t, sink.All())
}

func TestAuditLog_NilSinkIsNoop(t *testing.T) {
	r := gin.New()
	r.Use(AuditLog(nil))
	r.POST("/checkout_sessions", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout_sessions", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMapPathToOperation(t *testing.T) {
	tests := []struct {
		path   string
		method string
		want   string
	}{
		{"/checkout_sessions", "POST", "create"},
		{"/checkout_sessions/sess_1", "POST", "update"},
		{"/checkout_sessions/sess_1/complete", "POST", "complete"},
		{"/checkout_sessions/sess_1/cancel", "POST", "cancel"},
		{"/checkout_sessions/sess_1", "GET", ""},
		{"/unknown", "POST", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, mapPathToOperation(tc.path, tc.method), "path=%s method=%s", tc.path, tc.method)
	}
}
