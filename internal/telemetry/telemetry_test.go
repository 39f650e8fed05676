package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavetime/leavetime/internal/telemetry"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestInit_EnabledRequiresEndpoint(t *testing.T) {
	provider, err := telemetry.Init(context.Background(), telemetry.Config{
		Enabled:  true,
		Insecure: true,
	})

	assert.ErrorIs(t, err, telemetry.ErrNoEndpoint)
	assert.Nil(t, provider)
}

func TestProvider_ShutdownNilProviders(t *testing.T) {
	assert.NoError(t, (&telemetry.Provider{}).Shutdown(context.Background()))
}
