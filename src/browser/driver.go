package browser

import (
	"context"
	"time"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Driver is the remote-interaction surface the acquisition state machine
// drives. The chromedp Session implements it; tests substitute fakes.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	AwaitElement(ctx context.Context, locator string, timeout time.Duration) error
	Fill(ctx context.Context, locator, value string) error
	SelectOption(ctx context.Context, locator, visibleText string) error
	ListOptions(ctx context.Context, locator string) ([]string, error)
	Click(ctx context.Context, locator string) error
	ExtractTable(ctx context.Context, locator string) ([]models.RawRow, error)
	Blocked(ctx context.Context) (bool, error)
	Close() error
}
