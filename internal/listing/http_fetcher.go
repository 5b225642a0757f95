package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookheaven/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	productsPath     = "/api/v1/products"
	totalCountHeader = "X-Total-Count"
)

// HTTPFetcher queries the catalog HTTP API with a fiber client agent.
type HTTPFetcher struct {
	baseURL string
	timeout time.Duration
}

// NewHTTPFetcher creates a fetcher for the service at baseURL, for example
// "http://localhost:8080".
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// Fetch issues GET /api/v1/products for q. The total comes from the
// X-Total-Count header.
func (f *HTTPFetcher) Fetch(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	agent := fiber.Get(f.baseURL + productsPath + "?" + q.Values().Encode())
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return Result{}, fmt.Errorf("failed to build listing request: %w", err)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("listing request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &errBody)
		return Result{}, fmt.Errorf("listing request failed with status %d: %s", code, errBody.Message)
	}

	products := []models.Product{}
	if err := json.Unmarshal(body, &products); err != nil {
		return Result{}, fmt.Errorf("failed to decode listing: %w", err)
	}

	total := int64(len(products))
	if raw := resp.Header.Peek(totalCountHeader); len(raw) > 0 {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Result{}, fmt.Errorf("invalid %s header %q: %w", totalCountHeader, raw, err)
		}
		total = n
	}
	return Result{Products: products, Total: total}, nil
}
