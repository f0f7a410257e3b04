// Package application defines what CLI commands need from the app.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with Mock.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Application provides dependencies to commands.
type Application interface {
	// Detector builds a detector from the loaded configuration. Extra
	// options are applied after the configured ones.
	Detector(ctx context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error)

	// StateStore returns the configured state store, opened lazily.
	StateStore(ctx context.Context) (*state.Store, error)

	// Regions returns the configured target regions.
	Regions() []string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format, possibly empty.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
