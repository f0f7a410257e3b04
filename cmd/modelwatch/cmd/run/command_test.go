package run_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/cmd/modelwatch/cmd/run"
	"github.com/agentstation/modelwatch/internal/cmd/application"
	"github.com/agentstation/modelwatch/pkg/catalog"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/state"
	"github.com/agentstation/modelwatch/pkg/state/memory"
)

func mockApp(backend *memory.Backend, listings map[string][]string, format string) *application.Mock {
	lister := catalog.ListerFunc(func(_ context.Context, region string) (itemset.Set, error) {
		ids, ok := listings[region]
		if !ok {
			return nil, errors.NewUpstreamFetchError(region, errors.New("access denied"))
		}
		return itemset.FromSlice(ids), nil
	})

	return &application.Mock{
		DetectorFunc: func(_ context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error) {
			base := []modelwatch.Option{modelwatch.WithRegions("us-east-1", "us-west-2")}
			return modelwatch.New(lister, state.NewStore(backend), append(base, opts...)...)
		},
		OutputFormatFunc: func() string { return format },
	}
}

func execute(t *testing.T, app *application.Mock, args ...string) (string, error) {
	t.Helper()
	cmd := run.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunPrintsJSONReport(t *testing.T) {
	backend := memory.New()
	backend.Seed("us-east-1", "m1")
	app := mockApp(backend, map[string][]string{
		"us-east-1": {"m1", "m2"},
		"us-west-2": {"m1"},
	}, "json")

	out, err := execute(t, app)
	require.NoError(t, err)

	var rep modelwatch.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Success)
	assert.Equal(t, map[string][]string{"us-east-1": {"m2"}, "us-west-2": {"m1"}}, rep.NewItems)
	assert.Empty(t, rep.Errors)

	rec, err := backend.Load(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, rec.ItemIDs)
}

func TestRunDryRunLeavesStateAlone(t *testing.T) {
	backend := memory.New()
	app := mockApp(backend, map[string][]string{"us-east-1": {"m1"}, "us-west-2": {}}, "text")

	out, err := execute(t, app, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1\tm1\n", out)
	assert.Empty(t, backend.Regions())
}

func TestRunRegionsFlagOverridesConfig(t *testing.T) {
	backend := memory.New()
	app := mockApp(backend, map[string][]string{"eu-west-1": {"m9"}}, "json")

	out, err := execute(t, app, "--regions", "eu-west-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"eu-west-1"`)
	assert.NotContains(t, out, "us-west-2")
}

func TestRunFailsWhenARegionFails(t *testing.T) {
	backend := memory.New()
	app := mockApp(backend, map[string][]string{"us-east-1": {"m1"}}, "yaml")

	out, err := execute(t, app)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIncompleteRun)
	assert.Contains(t, out, "success: false")
	assert.Equal(t, []string{"us-east-1"}, backend.Regions())
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, mockApp(memory.New(), nil, "csv"))
	assert.True(t, errors.IsValidationError(err))
}
