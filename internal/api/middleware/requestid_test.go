package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/opencua/gateway/internal/shared/id"
)

func setupRequestIDRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestRequestIDAssigned(t *testing.T) {
	router, seen := setupRequestIDRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get(RequestIDHeader)
	if !strings.HasPrefix(header, id.RequestPrefix+"_") {
		t.Errorf("header id = %q, want %s_ prefix", header, id.RequestPrefix)
	}
	if *seen != header {
		t.Errorf("context id %q does not match header %q", *seen, header)
	}
}

func TestRequestIDKeepsValidIncoming(t *testing.T) {
	router, seen := setupRequestIDRouter()
	incoming := id.NewRequestID().String()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if *seen != incoming {
		t.Errorf("id = %q, want incoming %q kept", *seen, incoming)
	}
}

func TestRequestIDReplacesMalformedIncoming(t *testing.T) {
	router, seen := setupRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-ulid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if *seen == "not-a-ulid" || *seen == "" {
		t.Errorf("malformed incoming id kept: %q", *seen)
	}
}
