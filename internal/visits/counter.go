// Package visits counts page loads and decides when a load gets the
// highlighted background.
//
// The counter lives behind Store so the page can keep it in process memory,
// Redis, PostgreSQL or a SQLite file. A missing key reads as zero. Each load
// increments the stored value, except the load that reads exactly Period: that
// one is highlighted and the value restarts at 1.
package visits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"agedist/internal/visits/store"
)

const (
	DefaultKey    = "refreshCounter"
	DefaultPeriod = 5
)

// Store persists integer counters by key. Read returns store.ErrNotFound for
// a key that was never written.
type Store interface {
	Read(ctx context.Context, key string) (int, error)
	Write(ctx context.Context, key string, value int) error
}

// Visit is the outcome of one counted page load.
type Visit struct {
	// Count is the value stored after this load.
	Count       int
	Highlighted bool
}

type Counter struct {
	store  Store
	key    string
	period int
	logger *slog.Logger

	// serialises read-modify-write within this process
	mu sync.Mutex
}

type Option func(*Counter)

func WithKey(key string) Option {
	return func(c *Counter) {
		if key != "" {
			c.key = key
		}
	}
}

// WithPeriod sets the value at which a load is highlighted. Values below 1
// are ignored.
func WithPeriod(period int) Option {
	return func(c *Counter) {
		if period > 0 {
			c.period = period
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Counter) {
		c.logger = logger
	}
}

func NewCounter(s Store, opts ...Option) *Counter {
	c := &Counter{
		store:  s,
		key:    DefaultKey,
		period: DefaultPeriod,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Counter) Key() string { return c.key }

func (c *Counter) Period() int { return c.period }

// Init writes zero under the key when nothing is stored yet. An existing
// value is left alone.
func (c *Counter) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.store.Read(ctx, c.key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("init visit counter: %w", err)
	}
	if err := c.store.Write(ctx, c.key, 0); err != nil {
		return fmt.Errorf("init visit counter: %w", err)
	}
	return nil
}

// Read returns the stored value, zero when missing.
func (c *Counter) Read(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLocked(ctx)
}

// Tick counts one page load.
func (c *Counter) Tick(ctx context.Context) (Visit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.readLocked(ctx)
	if err != nil {
		return Visit{}, err
	}

	v := Visit{Count: current + 1}
	if current == c.period {
		v = Visit{Count: 1, Highlighted: true}
	}

	if err := c.store.Write(ctx, c.key, v.Count); err != nil {
		return Visit{}, fmt.Errorf("write visit counter: %w", err)
	}
	c.logger.DebugContext(ctx, "visit counted",
		"key", c.key,
		"previous", current,
		"count", v.Count,
		"highlighted", v.Highlighted,
	)
	return v, nil
}

func (c *Counter) readLocked(ctx context.Context) (int, error) {
	n, err := c.store.Read(ctx, c.key)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read visit counter: %w", err)
	}
	return n, nil
}
