package highlight

import (
	"sync"

	"github.com/dshills/glint/internal/logging"
)

// Deprecations logs each deprecation warning once per process. Entries are
// never removed.
type Deprecations struct {
	mu     sync.Mutex
	seen   map[deprecationKey]bool
	logger *logging.Logger
}

type deprecationKey struct {
	feature string
	message string
}

// NewDeprecations returns an empty registry logging to l.
func NewDeprecations(l *logging.Logger) *Deprecations {
	return &Deprecations{seen: make(map[deprecationKey]bool), logger: l}
}

// SetLogger changes the logger.
func (d *Deprecations) SetLogger(l *logging.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

// Warn logs the warning unless it was logged before. It reports whether it
// logged.
func (d *Deprecations) Warn(feature, message string) bool {
	key := deprecationKey{feature, message}
	d.mu.Lock()
	if d.seen[key] {
		d.mu.Unlock()
		return false
	}
	d.seen[key] = true
	l := d.logger
	d.mu.Unlock()

	if l != nil {
		l.WithComponent("deprecation").WithField("feature", feature).Warn("Deprecated: %s", message)
	}
	return true
}

// Seen reports whether the warning was already logged.
func (d *Deprecations) Seen(feature, message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[deprecationKey{feature, message}]
}
