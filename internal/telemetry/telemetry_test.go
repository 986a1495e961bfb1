package telemetry

import (
	"context"
	"testing"

	"progress-service/internal/config"
	"progress-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	log := logger.NewDiscard()

	tel, err := Init(context.Background(), config.TelemetryConfig{Enabled: false}, "progress-service", "test", log)
	require.NoError(t, err)

	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Metrics)
	assert.NotPanics(t, func() { tel.Metrics.RecordAttempt(context.Background(), "multiplication_basic") })
	assert.NoError(t, tel.Shutdown(context.Background(), log))
}
