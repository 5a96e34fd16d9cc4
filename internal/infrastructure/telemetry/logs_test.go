package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func TestLoggerProvider_Bridge(t *testing.T) {
	exporter := &recordingExporter{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		logger:   zap.NewNop(),
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.DebugLevel)
	log := lp.Bridge(zap.New(core), "storefront", zapcore.InfoLevel)

	log.Debug("lock acquired")
	log.Info("cart updated", zap.String("op", "add"))
	log.With(zap.String("user_id", "u1")).Warn("cart version conflict")

	assert.Equal(t, 3, local.Len())
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	assert.Equal(t, []string{"cart updated", "cart version conflict"}, exporter.bodies)
}

func TestLoggerProvider_DisabledKeepsLogger(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.Enabled())

	log := zap.NewNop()
	assert.Same(t, log, lp.Bridge(log, "storefront", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}
