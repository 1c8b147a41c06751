package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_SolveStoreList(t *testing.T) {
	dir := t.TempDir()
	o := options{
		problem:       filepath.Join("..", "..", "config", "testdata", "manhattan.yaml"),
		metaheuristic: "greedy_descent",
		timeLimit:     time.Minute,
		db:            filepath.Join(dir, "runs.db"),
		metrics:       filepath.Join(dir, "lvroute.prom"),
		logLevel:      "error",
	}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))
	require.Contains(t, out.String(), "status: ROUTING_SUCCESS")
	require.Contains(t, out.String(), "objective: 10")

	prom, err := os.ReadFile(o.metrics)
	require.NoError(t, err)
	require.Contains(t, string(prom), `strategy="PATH_CHEAPEST_ARC"`)

	out.Reset()
	require.NoError(t, run(context.Background(), options{db: o.db, list: 5, logLevel: "info"}, &out))
	require.Contains(t, out.String(), "manhattan")
	require.Contains(t, out.String(), "ROUTING_SUCCESS")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	require.Error(t, run(ctx, options{logLevel: "loud"}, &out))
	require.Error(t, run(ctx, options{logLevel: "info"}, &out))
	require.Error(t, run(ctx, options{logLevel: "info", list: 3}, &out))
	require.Error(t, run(ctx, options{logLevel: "info", problem: "missing.yaml"}, &out))
	require.Error(t, run(ctx, options{
		logLevel: "info",
		problem:  filepath.Join("..", "..", "config", "testdata", "manhattan.yaml"),
		strategy: "nearest_neighbour",
	}, &out))
}
