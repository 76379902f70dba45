package fetch

import (
	"context"
	"fmt"
	"regexp"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/browser"
)

// Strategy names, in fallback priority order.
const (
	StrategyInSessionFetch   = "in_session_fetch"
	StrategyDirectNavigation = "direct_navigation"
)

// attemptOutcome is what one strategy observed. transportOK means the HTTP
// layer reported success; the body may still be an HTML challenge page.
type attemptOutcome struct {
	transportOK bool
	status      int
	body        string
	err         error
}

type strategy struct {
	name string
	run  func(ctx context.Context, bc browser.Context, endpoint string) attemptOutcome
}

// strategies is the fixed fallback order: an in-page fetch first (the path
// the site's own frontend uses), then a direct navigation to the API URL.
var strategies = []strategy{
	{
		name: StrategyInSessionFetch,
		run: func(ctx context.Context, bc browser.Context, endpoint string) attemptOutcome {
			resp, err := bc.Fetch(ctx, endpoint)
			if err != nil {
				return attemptOutcome{err: err}
			}
			return attemptOutcome{
				transportOK: resp.OK,
				status:      resp.Status,
				body:        resp.Body,
			}
		},
	},
	{
		name: StrategyDirectNavigation,
		run: func(ctx context.Context, bc browser.Context, endpoint string) attemptOutcome {
			resp, err := bc.Navigate(ctx, endpoint)
			if err != nil {
				return attemptOutcome{err: err}
			}
			return attemptOutcome{
				transportOK: resp.Status >= 200 && resp.Status < 300,
				status:      resp.Status,
				body:        resp.Body,
			}
		},
	},
}

var (
	htmlBodyRe   = regexp.MustCompile(`^\s*<`)
	cloudflareRe = regexp.MustCompile(`(?i)Attention Required!\s*\|\s*Cloudflare`)
)

// looksHTML reports whether a response body is an HTML document rather than
// JSON: after trimming whitespace it begins with '<'.
func looksHTML(body string) bool {
	return htmlBodyRe.MatchString(body)
}

// classify maps a full set of failed attempts onto one upstream error. A
// recognized challenge page wins over everything; an in-session fetch that
// reached the API but returned non-JSON is called out with the last observed
// status; all remaining cases collapse to a generic browser-fetch failure.
func classify(outcomes []attemptOutcome) *domain.Error {
	var (
		lastStatus int
		sawError   bool
	)

	for _, out := range outcomes {
		if out.err != nil {
			sawError = true
			continue
		}
		if cloudflareRe.MatchString(out.body) {
			return domain.UpstreamError("blocked by Cloudflare bot protection")
		}
		if out.status != 0 {
			lastStatus = out.status
		}
	}

	// Only the in-session fetch proves the API itself answered; a later
	// navigation landing on an HTML page does not.
	if len(outcomes) > 0 && outcomes[0].err == nil && outcomes[0].transportOK {
		return domain.UpstreamError(
			fmt.Sprintf("unexpected non-JSON from API (status %d)", lastStatus),
		)
	}
	if sawError && lastStatus == 0 {
		return domain.UpstreamError("unknown network error occurred")
	}
	return domain.UpstreamError("browser fetch failed (CORS/bot protection)")
}
