package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    StateStoreFunc: func(context.Context) (*state.Store, error) {
//	        return state.NewStore(memory.New()), nil
//	    },
//	}
//	cmd := show.NewCommand(mock)
type Mock struct {
	DetectorFunc     func(ctx context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error)
	StateStoreFunc   func(ctx context.Context) (*state.Store, error)
	RegionsFunc      func() []string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
}

// Detector returns a detector using the mock function or nil.
func (m *Mock) Detector(ctx context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error) {
	if m.DetectorFunc != nil {
		return m.DetectorFunc(ctx, opts...)
	}
	return nil, nil
}

// StateStore returns a store using the mock function or nil.
func (m *Mock) StateStore(ctx context.Context) (*state.Store, error) {
	if m.StateStoreFunc != nil {
		return m.StateStoreFunc(ctx)
	}
	return nil, nil
}

// Regions returns regions using the mock function or nil.
func (m *Mock) Regions() []string {
	if m.RegionsFunc != nil {
		return m.RegionsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
