package registry

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultHistoryLimit = 500
	// Separator joins controller names and labels into ids.
	Separator = "."
)

// Config encapsulates all tunables for Registry construction.
type Config struct {
	// HistoryLimit caps the global history and the middleware activity log.
	HistoryLimit int
	// PerIDHistoryLimit is the default cap of every per-id bucket. Zero
	// means "follow HistoryLimit".
	PerIDHistoryLimit int
	// EncodeMaxDepth bounds value encoding recursion. Zero keeps the
	// encoder default.
	EncodeMaxDepth int
	// Publisher receives every recorded event. Defaults to a no-op.
	Publisher Publisher
	// Metrics is invoked during snapshot construction.
	Metrics func() map[string]any
	Logger  *zerolog.Logger
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}
