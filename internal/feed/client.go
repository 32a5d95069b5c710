package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Item is one entry of the upstream feed ({title, id, thumbnail, price, description}).
type Item struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Thumbnail   string          `json:"thumbnail"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type fetchResult struct {
	code int
	body []byte
	errs []error
}

type response struct {
	Products []Item `json:"products"`
}

// Client reads the product list from a dummyjson-style endpoint.
type Client struct {
	url     string
	timeout time.Duration
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, timeout: timeout}
}

// Fetch downloads and decodes the feed. Every failure is wrapped in service.ErrUpstreamFetch.
func (c *Client) Fetch(ctx context.Context) ([]model.UpsertProductRequest, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %w", service.ErrUpstreamFetch, context.DeadlineExceeded)
		}
		if remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrUpstreamFetch, err)
	}

	agent := fiber.Get(c.url)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("%w: %v", service.ErrUpstreamFetch, err)
	}

	// The agent only honors its own timeout, so the request runs in the background and a
	// cancelled ctx returns early. The buffered channel lets the goroutine finish either way.
	done := make(chan fetchResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- fetchResult{code: code, body: body, errs: errs}
	}()

	var res fetchResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", service.ErrUpstreamFetch, ctx.Err())
	case res = <-done:
	}

	code, body := res.code, res.body
	if len(res.errs) > 0 {
		return nil, fmt.Errorf("%w: %v", service.ErrUpstreamFetch, res.errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %d", service.ErrUpstreamFetch, code)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", service.ErrUpstreamFetch, err)
	}
	if resp.Products == nil {
		return nil, fmt.Errorf("%w: missing products list", service.ErrUpstreamFetch)
	}

	items := make([]model.UpsertProductRequest, 0, len(resp.Products))
	for _, p := range resp.Products {
		items = append(items, p.toRequest())
	}
	return items, nil
}

func (p Item) toRequest() model.UpsertProductRequest {
	price := p.Price
	req := model.UpsertProductRequest{
		SKU:   strconv.FormatInt(p.ID, 10),
		Title: p.Title,
		Image: p.Thumbnail,
		Price: &price,
	}
	if p.Description != "" {
		desc := p.Description
		req.Description = &desc
	}
	return req
}
