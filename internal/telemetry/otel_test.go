package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/signoffhq/signoff/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracing_Disabled(t *testing.T) {
	tp, err := SetupTracing(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestGrpcEndpoint(t *testing.T) {
	assert.Equal(t, "otel:4317", grpcEndpoint("http://otel:4317"))
	assert.Equal(t, "otel:4317", grpcEndpoint("https://otel:4317"))
	assert.Equal(t, "otel:4317", grpcEndpoint("otel:4317"))
}

func TestSampler(t *testing.T) {
	assert.True(t, strings.Contains(sampler(0).Description(), "AlwaysOnSampler"))
	assert.True(t, strings.Contains(sampler(2).Description(), "AlwaysOnSampler"))
	assert.True(t, strings.Contains(sampler(0.25).Description(), "TraceIDRatioBased{0.25}"))
}
