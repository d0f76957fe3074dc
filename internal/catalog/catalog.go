// Package catalog is the application service over the scam catalog: it owns
// the write path that feeds linkage and the read paths that apply disclosure.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/linkage"
	"github.com/diewo77/scam-catalog/internal/store"
	"github.com/diewo77/scam-catalog/validation"
)

// Sentinel errors returned by Service methods.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries per-field violations and matches ErrInvalidInput.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %d violation(s)", len(e.Violations))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// TierInvalidator drops cached field tiers after a policy change.
type TierInvalidator interface {
	Invalidate(key disclosure.FieldKey)
}

// Options configures a Service.
type Options struct {
	// StaticURL prefixes image placeholders.
	StaticURL string
	Logger    *slog.Logger
	// Tiers, when set, is invalidated after SetFieldTier.
	Tiers TierInvalidator
	Now   func() time.Time
}

// Service implements the catalog operations.
type Service struct {
	store     *store.Store
	linker    *linkage.Maintainer
	gate      *disclosure.Gate
	tiers     TierInvalidator
	staticURL string
	log       *slog.Logger
	now       func() time.Time
}

// New creates a Service.
func New(s *store.Store, linker *linkage.Maintainer, gate *disclosure.Gate, opts Options) *Service {
	svc := &Service{
		store:     s,
		linker:    linker,
		gate:      gate,
		tiers:     opts.Tiers,
		staticURL: opts.StaticURL,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if svc.log == nil {
		svc.log = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// notFound maps store misses onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
