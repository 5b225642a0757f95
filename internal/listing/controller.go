package listing

import (
	"context"
	"errors"
	"sync"

	"bookheaven/internal/models"

	"go.uber.org/zap"
)

// ErrSuperseded is returned for a fetch whose selection was replaced by a
// newer one before its response arrived. Its result is discarded.
var ErrSuperseded = errors.New("listing fetch superseded by a newer selection")

// Result is one page of a listing together with the total match count.
type Result struct {
	Products []models.Product
	Total    int64
}

// Fetcher runs listing queries against the catalog.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Controller holds the current selection and the latest listing result.
// Every transition re-issues the query; responses are applied only if no
// newer transition happened in the meantime.
type Controller struct {
	mu         sync.Mutex
	fetcher    Fetcher
	state      State
	result     Result
	generation uint64
	logger     *zap.Logger
}

// NewController creates a Controller starting from initial. Nothing is
// fetched until the first transition or Refresh.
func NewController(fetcher Fetcher, initial State, logger *zap.Logger) *Controller {
	return &Controller{fetcher: fetcher, state: initial, logger: logger}
}

// State returns the current selection.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the most recently applied listing result.
func (c *Controller) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Apply transitions the selection with fn and fetches the matching page.
func (c *Controller) Apply(ctx context.Context, fn func(State) State) (Result, error) {
	c.mu.Lock()
	c.state = fn(c.state)
	c.generation++
	gen := c.generation
	q := c.state.Query()
	c.mu.Unlock()

	res, err := c.fetcher.Fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding superseded listing response", zap.Uint64("generation", gen), zap.Uint64("current", c.generation))
		return Result{}, ErrSuperseded
	}
	if err != nil {
		return Result{}, err
	}
	c.result = res
	return res, nil
}

// Refresh re-fetches the current selection.
func (c *Controller) Refresh(ctx context.Context) (Result, error) {
	return c.Apply(ctx, func(s State) State { return s })
}

// ToggleBrand adds or removes a brand filter and fetches page 1.
func (c *Controller) ToggleBrand(ctx context.Context, id string) (Result, error) {
	return c.Apply(ctx, func(s State) State { return s.ToggleBrand(id) })
}

// ToggleCategory adds or removes a category filter and fetches page 1.
func (c *Controller) ToggleCategory(ctx context.Context, id string) (Result, error) {
	return c.Apply(ctx, func(s State) State { return s.ToggleCategory(id) })
}

// SetSort selects a sort option, or clears it when opt is nil, and fetches page 1.
func (c *Controller) SetSort(ctx context.Context, opt *SortOption) (Result, error) {
	return c.Apply(ctx, func(s State) State { return s.WithSort(opt) })
}

// SetPage moves to page, keeping filters and sort.
func (c *Controller) SetPage(ctx context.Context, page int) (Result, error) {
	return c.Apply(ctx, func(s State) State { return s.WithPage(page) })
}
