package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/testutils"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/adapters/xlsx"
	"github.com/aretw0/intake/pkg/inbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Session.Backend = config.BackendMemory
	cfg.Sink.Backend = config.BackendMemory
	cfg.SMS.Backend = config.BackendLog
	return cfg
}

func TestBuild_MemoryBackends(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)

	require.NoError(t, app.Queue.Submit(inbound.Message{From: "+15551234567", Text: "Hola"}))
	require.NoError(t, app.Close(ctx))

	sess, err := app.Sessions.Load(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "awaiting_name", string(sess.State))
	assert.IsType(t, &memory.Sink{}, app.Sink)
}

func TestBuild_XLSXSink(t *testing.T) {
	cfg := testConfig()
	cfg.Sink.Backend = config.BackendXLSX
	cfg.Sink.ExcelFile = filepath.Join(t.TempDir(), "records.xlsx")

	app, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close(context.Background())

	sink, ok := app.Sink.(*xlsx.Sink)
	require.True(t, ok)
	assert.Equal(t, cfg.Sink.ExcelFile, sink.Path())
}

func TestBuild_RedisWithHealthCheck(t *testing.T) {
	mr, _ := testutils.StartRedis(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Session.Backend = config.BackendRedis
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port

	ctx := context.Background()
	app, err := Build(ctx, cfg, logging.NewNop())
	require.NoError(t, err)

	h := app.Handler().Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","redis":"ok"}`, w.Body.String())

	require.NoError(t, app.Queue.Submit(inbound.Message{From: "+15551234567", Text: "Hola"}))
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, app.Close(closeCtx))

	assert.True(t, mr.Exists(cfg.Redis.Prefix+"+15551234567"))
}

func TestBuild_EncryptedFileStore(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Backend = config.BackendFile
	cfg.Session.Dir = t.TempDir()
	cfg.Session.EncryptionKey = "not base64!"

	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
