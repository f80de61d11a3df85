package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"uk.co.dudmesh.inbound/internal/service/message"
	"uk.co.dudmesh.inbound/pkg/signature"
)

const testSecret = "testsecret"

type testConfig string

func (c testConfig) DatabaseURL() string {
	return string(c)
}

func newTestServer(t *testing.T, secret string) *echo.Echo {
	t.Helper()
	messageService, err := message.New(testConfig(filepath.Join(t.TempDir(), "inbound.db")))
	require.NoError(t, err)
	t.Cleanup(func() {
		messageService.Close()
	})

	server := echo.New()
	server.Use(middleware.RequestID())
	server.Use(RequestLogger())
	Routes(server, messageService, secret)
	return server
}

func deliver(server *echo.Echo, body string, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sig != "" {
		req.Header.Set(signature.HeaderName, sig)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func deliverSigned(server *echo.Echo, body string) *httptest.ResponseRecorder {
	return deliver(server, body, signature.Sign(testSecret, []byte(body)))
}

func get(server *echo.Echo, path string, query url.Values) *httptest.ResponseRecorder {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}
