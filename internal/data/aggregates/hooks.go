package aggregates

import (
	"strings"
	"time"

	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

// Hooks captures aggregate-level write outcomes.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// DefaultSlowWrite is the duration above which LogHooks warns about a write.
const DefaultSlowWrite = 500 * time.Millisecond

type logHooks struct {
	log  *logger.Logger
	slow time.Duration
}

// NewLogHooks reports conflicts, retries and slow writes through log.
func NewLogHooks(log *logger.Logger, slow time.Duration) Hooks {
	if log == nil {
		return noopHooks{}
	}
	if slow <= 0 {
		slow = DefaultSlowWrite
	}
	return &logHooks{log: log.With("component", "AggregateHooks"), slow: slow}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	name = strings.TrimSpace(name)
	if dur >= h.slow {
		h.log.Warn("slow aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
		return
	}
	h.log.Debug("aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
}

func (h *logHooks) IncConflict(name string) {
	h.log.Warn("aggregate write conflict", "op", strings.TrimSpace(name))
}

func (h *logHooks) IncRetry(name string) {
	h.log.Warn("aggregate write retry", "op", strings.TrimSpace(name))
}
