package loader

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Fetch resolves a locator to artifact source text. Worker contexts call
// this lazily from inside the worker so the source never crosses the
// message boundary.
func Fetch(ctx context.Context, locator string, client *resty.Client) (string, error) {
	if client == nil {
		client = resty.New()
	}
	resp, err := client.R().SetContext(ctx).Get(locator)
	if err != nil {
		return "", fmt.Errorf("fetch artifact %s: %w", locator, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch artifact %s: %s", locator, resp.Status())
	}
	return resp.String(), nil
}
