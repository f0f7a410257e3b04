// Package constants provides shared constants used throughout modelwatch:
// timeouts, limits, file permissions and defaults that must agree between
// the CLI, the Lambda handler and the detector.
package constants

import "time"

// Timeout constants
const (
	// RegionFetchTimeout bounds a single region's catalog listing, retries included
	RegionFetchTimeout = 60 * time.Second

	// StateTimeout bounds a single state store read or write
	StateTimeout = 15 * time.Second

	// NotifyTimeout bounds a notifier invocation; the agent runtime can be slow
	NotifyTimeout = 2 * time.Minute

	// DefaultWatchInterval matches the EventBridge rate(1 minute) schedule
	DefaultWatchInterval = 1 * time.Minute

	// ShutdownTimeout is how long graceful shutdown may take
	ShutdownTimeout = 5 * time.Second
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// AWS client settings
const (
	// MaxAttempts is the SDK retry budget per call
	MaxAttempts = 5

	// StatePartitionKey is the constant partition key of the DynamoDB state table
	StatePartitionKey = "MODEL_STATE"
)

// Notifier limits
const (
	// MinSessionIDLength is the minimum agent runtime session identifier length
	MinSessionIDLength = 33

	// SessionIDPrefix prefixes every agent runtime session identifier
	SessionIDPrefix = "detector-"

	// MaxSubjectLength caps notification subjects
	MaxSubjectLength = 100

	// ResponseLogLimit caps how much of a notifier response is logged
	ResponseLogLimit = 500
)
