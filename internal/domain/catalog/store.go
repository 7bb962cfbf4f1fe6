package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/resilience"
	"go.uber.org/zap"
)

// Store is the read-only driver catalog. Records are loaded from the source
// on first use and never change afterwards; a failed load leaves the
// catalog empty rather than failing requests.
type Store struct {
	source Source
	logger *logging.Logger
	onLoad func(count int, err error)

	attempts  int
	retryWait time.Duration

	once    sync.Once
	drivers []Driver
	byID    map[string]int
}

// NewStore creates a store over source. A nil logger discards output.
func NewStore(source Source, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		source: source,
		logger: logger.Component("catalog"),
	}
}

// OnLoad registers a callback run once after the load attempt. Must be set
// before the first read.
func (s *Store) OnLoad(fn func(count int, err error)) {
	s.onLoad = fn
}

// Retry makes the initial load try the source up to attempts times, waiting
// wait between tries. A source whose circuit is open ends the retries early.
// Must be set before the first read.
func (s *Store) Retry(attempts int, wait time.Duration) *Store {
	s.attempts = attempts
	s.retryWait = wait
	return s
}

// Load forces the initial load. Reads call it implicitly.
func (s *Store) Load(ctx context.Context) {
	s.once.Do(func() {
		// The first caller's cancellation must not poison the shared catalog.
		ctx := context.WithoutCancel(ctx)
		start := time.Now()

		drivers, err := s.fetch(ctx)
		if err != nil {
			s.logger.Error("catalog load failed, serving empty catalog",
				zap.String("source", s.source.Name()),
				zap.Error(err))
			drivers = nil
		} else {
			s.logger.Info("catalog loaded",
				zap.String("source", s.source.Name()),
				zap.Int("drivers", len(drivers)),
				zap.Duration("duration", time.Since(start)))
		}

		s.drivers = drivers
		s.byID = make(map[string]int, len(drivers))
		for i, d := range drivers {
			s.byID[d.ID] = i
		}
		if s.onLoad != nil {
			s.onLoad(len(drivers), err)
		}
	})
}

func (s *Store) fetch(ctx context.Context) ([]Driver, error) {
	if s.source == nil {
		return nil, nil
	}

	var err error
	for attempt := 1; ; attempt++ {
		var raw []Driver
		raw, err = s.source.Load(ctx)
		if err == nil {
			return newNormalizer().normalize(raw)
		}
		if attempt >= s.attempts || errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, err
		}

		s.logger.Warn("catalog load attempt failed",
			zap.String("source", s.source.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryWait):
		}
	}
}

// FindByID returns the driver with exactly id.
func (s *Store) FindByID(ctx context.Context, id string) (*Driver, bool) {
	s.Load(ctx)
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	d := s.drivers[i]
	return &d, true
}

// Filter returns the drivers matching every predicate, in catalog order.
func (s *Store) Filter(ctx context.Context, preds ...Predicate) []Driver {
	s.Load(ctx)
	match := All(preds...)
	out := make([]Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if match(d) {
			out = append(out, d)
		}
	}
	return out
}

// All returns every driver in catalog order.
func (s *Store) All(ctx context.Context) []Driver {
	return s.Filter(ctx)
}

// Summaries returns the listing form of every driver in catalog order.
func (s *Store) Summaries(ctx context.Context) []Summary {
	s.Load(ctx)
	out := make([]Summary, len(s.drivers))
	for i, d := range s.drivers {
		out[i] = d.Summarize()
	}
	return out
}

// Len returns the number of loaded drivers.
func (s *Store) Len(ctx context.Context) int {
	s.Load(ctx)
	return len(s.drivers)
}
