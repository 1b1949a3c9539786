package browser

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/config"
	"github.com/quantumsuite/marketfetch/src/models"
)

// Session owns one automated browser. The identity string is sampled once
// per session, not per request, and every remote action is preceded by a
// random pacing delay. Callers must Close on every exit path.
type Session struct {
	cfg       config.Config
	userAgent string

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	rng *rand.Rand
}

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// OpenSession starts a headless browser configured to suppress
// automation-detection signals.
func OpenSession(ctx context.Context, cfg config.Config) (*Session, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	userAgent := cfg.UserAgents[rng.Intn(len(cfg.UserAgents))]

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:           cfg,
		userAgent:     userAgent,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		rng:           rng,
	}

	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, e := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
		return e
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("OpenSession: failed to start browser: %w", err)
	}

	log.WithField("userAgent", userAgent).Debug("browser session opened")

	return s, nil
}

// pace sleeps for a random duration in the configured half-open interval.
// This is a correctness requirement for the remote target, not an
// optimization.
func (s *Session) pace() {
	span := s.cfg.MaxDelaySec - s.cfg.MinDelaySec
	delay := s.cfg.MinDelaySec + s.rng.Float64()*span
	time.Sleep(time.Duration(delay * float64(time.Second)))
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.pace()

	navCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavTimeout())
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &models.UnreachableError{URL: url, Err: err}
	}

	return nil
}

func (s *Session) AwaitElement(ctx context.Context, locator string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(locator, chromedp.ByQuery)); err != nil {
		return &models.ElementTimeoutError{Locator: locator, Timeout: timeout}
	}

	return nil
}

func (s *Session) Fill(ctx context.Context, locator, value string) error {
	s.pace()

	fillCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	err := chromedp.Run(fillCtx,
		chromedp.Clear(locator, chromedp.ByQuery),
		chromedp.SendKeys(locator, value, chromedp.ByQuery),
	)
	if err != nil {
		return &models.ElementTimeoutError{Locator: locator, Timeout: s.cfg.ElementTimeout()}
	}

	return nil
}

// SelectOption picks a dropdown entry by its visible text. An absent entry is
// a terminal signal for that field, never retried here.
func (s *Session) SelectOption(ctx context.Context, locator, visibleText string) error {
	choices, err := s.ListOptions(ctx, locator)
	if err != nil {
		return err
	}

	found := false
	for _, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(visibleText)) {
			found = true
			break
		}
	}
	if !found {
		return &models.OptionNotAvailableError{Locator: locator, Requested: visibleText, Choices: choices}
	}

	s.pace()

	selCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	script := fmt.Sprintf(`(() => {
		const sel = document.querySelector(%q);
		if (!sel) return false;
		for (const opt of sel.options) {
			if (opt.text.trim().toLowerCase() === %q.trim().toLowerCase()) {
				sel.value = opt.value;
				sel.dispatchEvent(new Event('change', {bubbles: true}));
				return true;
			}
		}
		return false;
	})()`, locator, visibleText)

	var ok bool
	if err := chromedp.Run(selCtx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("SelectOption: failed to select %q in %q: %w", visibleText, locator, err)
	}
	if !ok {
		return &models.OptionNotAvailableError{Locator: locator, Requested: visibleText, Choices: choices}
	}

	return nil
}

// ListOptions returns the visible texts currently rendered in a dropdown.
func (s *Session) ListOptions(ctx context.Context, locator string) ([]string, error) {
	listCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	script := fmt.Sprintf(`(() => {
		const sel = document.querySelector(%q);
		if (!sel) return [];
		return Array.from(sel.options).map(o => o.text.trim());
	})()`, locator)

	var choices []string
	if err := chromedp.Run(listCtx, chromedp.Evaluate(script, &choices)); err != nil {
		return nil, &models.ElementTimeoutError{Locator: locator, Timeout: s.cfg.ElementTimeout()}
	}

	return choices, nil
}

func (s *Session) Click(ctx context.Context, locator string) error {
	s.pace()

	clickCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	if err := chromedp.Run(clickCtx, chromedp.Click(locator, chromedp.ByQuery)); err != nil {
		return &models.ElementTimeoutError{Locator: locator, Timeout: s.cfg.ElementTimeout()}
	}

	return nil
}

// ExtractTable parses the currently rendered result table into raw rows. A
// missing or empty table yields empty rows, distinct from a transport
// failure.
func (s *Session) ExtractTable(ctx context.Context, locator string) ([]models.RawRow, error) {
	extractCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	script := fmt.Sprintf(`(() => {
		const t = document.querySelector(%q);
		if (!t) return [];
		return Array.from(t.rows).map(r => Array.from(r.cells).map(c => c.innerText.trim()));
	})()`, locator)

	var cells [][]string
	if err := chromedp.Run(extractCtx, chromedp.Evaluate(script, &cells)); err != nil {
		return nil, fmt.Errorf("ExtractTable: failed to read table %q: %w", locator, err)
	}

	if len(cells) < 2 {
		return nil, nil
	}

	headers := cells[0]
	rows := make([]models.RawRow, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := models.RawRow{}
		for i, v := range line {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = v
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// Blocked probes the current page for challenge or rate-limit markers.
func (s *Session) Blocked(ctx context.Context) (bool, error) {
	probeCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.ElementTimeout())
	defer cancel()

	var body string
	if err := chromedp.Run(probeCtx, chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return false, fmt.Errorf("Blocked: failed to read page: %w", err)
	}

	lower := strings.ToLower(body)
	for _, marker := range s.cfg.ChallengeMarkers {
		if strings.Contains(lower, marker) {
			return true, nil
		}
	}

	return false, nil
}

// Close releases the browser and its allocator. Safe to call more than once.
func (s *Session) Close() error {
	if s.cancelBrowser != nil {
		s.cancelBrowser()
		s.cancelBrowser = nil
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
		s.cancelAlloc = nil
	}
	return nil
}

func (s *Session) UserAgent() string {
	return s.userAgent
}
