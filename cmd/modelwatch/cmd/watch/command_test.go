package watch_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/cmd/modelwatch/cmd/watch"
	"github.com/agentstation/modelwatch/internal/cmd/application"
	"github.com/agentstation/modelwatch/pkg/catalog"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/state"
	"github.com/agentstation/modelwatch/pkg/state/memory"
)

func TestWatchRunsUntilCanceled(t *testing.T) {
	backend := memory.New()
	var calls atomic.Int32
	lister := catalog.ListerFunc(func(context.Context, string) (itemset.Set, error) {
		calls.Add(1)
		return itemset.New("m1"), nil
	})

	app := &application.Mock{
		DetectorFunc: func(_ context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error) {
			return modelwatch.New(lister, state.NewStore(backend),
				append([]modelwatch.Option{modelwatch.WithRegions("us-east-1")}, opts...)...)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watch.Execute(ctx, app, &watch.Flags{Interval: 20 * time.Millisecond})
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Equal(t, []string{"us-east-1"}, backend.Regions())
}

func TestWatchRejectsBadCron(t *testing.T) {
	app := &application.Mock{
		DetectorFunc: func(_ context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error) {
			lister := catalog.ListerFunc(func(context.Context, string) (itemset.Set, error) { return nil, nil })
			return modelwatch.New(lister, state.NewStore(memory.New()),
				append([]modelwatch.Option{modelwatch.WithRegions("us-east-1")}, opts...)...)
		},
	}

	err := watch.Execute(context.Background(), app, &watch.Flags{Cron: "every tuesday"})
	assert.Error(t, err)
}
