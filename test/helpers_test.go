package test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/bsb-logistics/ganttboard/core/mqtt"
	"github.com/bsb-logistics/ganttboard/core/mutation"
	"github.com/bsb-logistics/ganttboard/core/schedule"
	"github.com/bsb-logistics/ganttboard/core/timeline"
	"github.com/bsb-logistics/ganttboard/infra/remote"
	"github.com/bsb-logistics/ganttboard/internal/backendsim"
	"github.com/bsb-logistics/ganttboard/test/util"
)

// startBackend runs a seeded development backend for the duration of t.
func startBackend(t *testing.T, n coremqtt.Notifier) string {
	t.Helper()
	seed, err := backendsim.DefaultSeed()
	require.NoError(t, err)
	opts := []backendsim.Option{backendsim.WithRegistry(prometheus.NewRegistry())}
	if n != nil {
		opts = append(opts, backendsim.WithNotifier(n))
	}
	srv := backendsim.NewServer(backendsim.Config{Address: "127.0.0.1:0"}, backendsim.NewStore(seed), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	base, err := util.StartBackend(ctx, srv)
	require.NoError(t, err)
	return base
}

// newBoard builds one operator's board against the backend at base.
func newBoard(t *testing.T, base string, opts ...mutation.Option) *mutation.Coordinator {
	t.Helper()
	vp, err := timeline.NewViewport(timeline.DefaultWindow(time.Now(), time.UTC))
	require.NoError(t, err)
	client := remote.NewClient(remote.Config{BaseURL: base, TimeoutSeconds: 5})
	c, err := mutation.NewCoordinator(schedule.NewTree(nil), client, vp, opts...)
	require.NoError(t, err)
	require.NoError(t, c.FetchVehicles(context.Background()))
	return c
}
