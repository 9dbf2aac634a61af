package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"voice-type/internal/api/middleware"
	"voice-type/internal/app/testutil"
	"voice-type/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:          "127.0.0.1",
			Port:          0,
			MaxUploadSize: 1 << 20,
			AllowOrigins:  []string{"*"},
		},
		Auth:           config.AuthConfig{APIToken: "t"},
		MetricsEnabled: true,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := testutil.NewMockTranscriptionService(t)
	svc.On("Ready").Return(false).Maybe()

	reg := prometheus.NewRegistry()
	return NewServer(testConfig(), svc, middleware.NewHTTPMetrics(reg), reg, zap.NewNop())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/swagger/doc.json", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "voicetype_http_requests_total")
}

func TestServer_RecoveredPanicIsCounted(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().GET("/boom", func(c *gin.Context) { panic("engine exploded") })

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `voicetype_http_requests_total{method="GET",route="/boom",status="500"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false

	svc := testutil.NewMockTranscriptionService(t)
	srv := NewServer(cfg, svc, nil, prometheus.NewRegistry(), zap.NewNop())

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := newTestServer(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, srv.Serve(listener))

	resp, err := http.Get("http://" + listener.Addr().String() + "/v1/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"ok","model_loaded":false}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-srv.Errors():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}

func TestServer_StartBindError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	cfg := testConfig()
	cfg.Server.Port = occupied.Addr().(*net.TCPAddr).Port

	srv := NewServer(cfg, testutil.NewMockTranscriptionService(t), nil, nil, zap.NewNop())
	assert.Error(t, srv.Start())
}
