package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/domain"
)

// FetchResult is one successfully rendered page
type FetchResult struct {
	URL        string
	FinalURL   string
	HTML       string
	Title      string
	HTTPStatus int
	Screenshot []byte
	FetchedAt  time.Time
}

// PageFetcher renders a page and returns its settled HTML. Implementations
// own retry behavior; a returned error means the page is unrecoverable for
// this job.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*FetchResult, error)
	Close() error
}

// maskWebdriver hides the most common headless fingerprints before any page
// script runs.
const maskWebdriver = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3] });
`

// BrowserFetcher renders pages with a real browser. One browser process per
// fetcher lifetime; every attempt gets a fresh isolated context so cookies
// and storage never leak across user-agent rotations.
type BrowserFetcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.CrawlerConfig
	logger  *zap.Logger
}

// NewBrowserFetcher launches the browser process
func NewBrowserFetcher(cfg config.CrawlerConfig, logger *zap.Logger) (*BrowserFetcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &BrowserFetcher{pw: pw, browser: browser, cfg: cfg, logger: logger}, nil
}

// Close tears down the browser process
func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		f.browser.Close()
	}
	if f.pw != nil {
		return f.pw.Stop()
	}
	return nil
}

// Fetch renders a page, retrying with user-agent rotation and a fixed
// backoff. All attempts exhausted returns a FetchError carrying the last
// cause.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.cfg.FetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.cfg.RetryBackoff):
			}
		}

		result, err := f.fetchOnce(pageURL, userAgentFor(attempt))
		if err == nil {
			return result, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", pageURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, &domain.FetchError{URL: pageURL, Attempts: f.cfg.FetchRetries, LastErr: lastErr}
}

func (f *BrowserFetcher) fetchOnce(pageURL, userAgent string) (*FetchResult, error) {
	browserCtx, err := f.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	defer browserCtx.Close()

	if err := browserCtx.AddInitScript(playwright.Script{Content: playwright.String(maskWebdriver)}); err != nil {
		return nil, fmt.Errorf("adding init script: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	resp, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(f.cfg.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", pageURL, err)
	}

	status := 0
	if resp != nil {
		status = resp.Status()
	}
	if status >= 500 {
		return nil, fmt.Errorf("page returned status %d", status)
	}

	// Late-rendering SPA components settle during this window
	page.WaitForTimeout(float64(f.cfg.SettleDelay.Milliseconds()))

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page content: %w", err)
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}

	screenshot, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(80),
	})
	if err != nil {
		f.logger.Warn("screenshot failed", zap.String("url", pageURL), zap.Error(err))
		screenshot = nil
	}

	return &FetchResult{
		URL:        pageURL,
		FinalURL:   page.URL(),
		HTML:       html,
		Title:      title,
		HTTPStatus: status,
		Screenshot: screenshot,
		FetchedAt:  time.Now().UTC(),
	}, nil
}
