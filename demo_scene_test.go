package superbounds

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallDemoConfig() Config {
	cfg := DefaultConfig()
	cfg.ObjectCount = 400
	cfg.PlacementRadius = 15
	cfg.QueryRadius = 15
	cfg.Cycles = 12
	cfg.FPS = 0
	cfg.Seed = 99
	cfg.Workers = 4
	cfg.BatchSize = 16
	return cfg
}

func TestDemoSceneRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	ds, err := NewDemoScene(smallDemoConfig(), reg)
	require.NoError(t, err)

	assert.Len(t, ds.Bounds.Entities, 400)
	assert.Equal(t, 400, ds.Driver.Engine().Len())

	summary, err := ds.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Cycles)
	assert.Equal(t, uint64(12), ds.Queries.Ticks())
	assert.Nil(t, ds.Queries.Pending())
	assert.Equal(t, 12.0, testutil.ToFloat64(ds.Metrics.CyclesTotal))
	assert.LessOrEqual(t, summary.MaxRayHits, float64(400))

	require.NoError(t, ds.Close())
	_, err = ds.Driver.BeginCycle(CycleInputs{})
	assert.ErrorIs(t, err, ErrDriverClosed)
}

func TestDemoSceneStopsOnCancel(t *testing.T) {
	cfg := smallDemoConfig()
	cfg.FPS = 30
	ds, err := NewDemoScene(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, ds.Metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := ds.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Cycles)
	require.NoError(t, ds.Close())
}

func TestDemoSceneRejectsBadConfig(t *testing.T) {
	cfg := smallDemoConfig()
	cfg.MatchPolicy = "sometimes"
	_, err := NewDemoScene(cfg, nil)
	assert.Error(t, err)
}
