package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInstrument(t *testing.T) {
	handler := instrument(nil, "/v1/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/v1/test", nil))
	assert.Equal(t, http.StatusTeapot, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
}

func TestInstrument_RecoversPanics(t *testing.T) {
	handler := instrument(nil, "/v1/test", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler(recorder, httptest.NewRequest(http.MethodGet, "/v1/test", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestRecoveryUnaryServerInterceptor(t *testing.T) {
	interceptor := recoveryUnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "resp", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0600))

	for _, fileURL := range []string{path, "file://" + path} {
		contents, err := LoadFile(fileURL)
		require.NoError(t, err, fileURL)
		assert.Equal(t, "contents", string(contents))
	}

	_, err := LoadFile("s3://bucket/cert.pem")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func TestLoadTLSConfig(t *testing.T) {
	tlsConfig, err := loadTLSConfig(BaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, tlsConfig)

	_, err = loadTLSConfig(BaseConfig{TLSCertificate: "cert.pem"})
	assert.Error(t, err)
}
