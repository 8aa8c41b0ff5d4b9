package acquire

import (
	"context"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultLinkSelector matches the CSV download link of the WHO TB data page.
	DefaultLinkSelector = `a[href*='generateCSV.asp']`

	defaultTimeout      = 2 * time.Minute
	defaultPollInterval = 500 * time.Millisecond
)

// BrowserDownloader downloads a file by opening a page in Chrome and clicking
// a download link.
type BrowserDownloader struct {
	// Headless runs the browser without a window.
	Headless bool
	// LinkSelector is the CSS selector of the link to click.
	LinkSelector string
	// Timeout bounds the whole download, browser start included.
	Timeout time.Duration
	// PollInterval is how often the directory is checked for the file.
	PollInterval time.Duration
}

// NewBrowserDownloader returns a BrowserDownloader for the WHO TB data page.
func NewBrowserDownloader(headless bool, timeout time.Duration) *BrowserDownloader {
	return &BrowserDownloader{
		Headless:     headless,
		LinkSelector: DefaultLinkSelector,
		Timeout:      timeout,
		PollInterval: defaultPollInterval,
	}
}

// Download implements Downloader. It returns once a complete file with
// extension ext is in dir, or fails when Timeout expires.
func (b *BrowserDownloader) Download(ctx context.Context, url, dir, ext string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	poll := b.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	selector := b.LinkSelector
	if selector == "" {
		selector = DefaultLinkSelector
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless))
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	return chromedp.Run(runCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(abs).
			WithEventsEnabled(true),
		chromedp.Navigate(url),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForFile(ctx, abs, ext, poll)
		}),
	)
}

// waitForFile polls dir until Locate finds a file or ctx is done.
func waitForFile(ctx context.Context, dir, ext string, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		if _, err := Locate(dir, ext); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
