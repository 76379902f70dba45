// Package fetch retrieves the weekly schedule payload from the upstream API
// through a browser session, falling back between transport strategies when
// the bot-protection middleware blocks the primary path.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/campusdining/dininghours/internal/core/config"
	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/browser"
	"github.com/campusdining/dininghours/internal/ingest/metrics"
)

// Client is the retrieval engine. It holds the shared browser session and
// opens one isolated browsing context per call.
type Client struct {
	session browser.Session
	cfg     config.UpstreamConfig
}

// New creates a retrieval client over the given session.
func New(session browser.Session, cfg config.UpstreamConfig) *Client {
	return &Client{session: session, cfg: cfg}
}

// ScheduleURL builds the weekly-schedule endpoint for a target date.
func (c *Client) ScheduleURL(date string) string {
	return fmt.Sprintf("%s/locations/weekly_schedule?site_id=%s&date=%s",
		c.cfg.BaseURL, url.QueryEscape(c.cfg.SiteID), url.QueryEscape(date))
}

// Retrieve fetches the raw JSON payload for a target date. Every failure is
// returned as a classified upstream error; nothing is thrown past this
// boundary. The browsing context is torn down on all exit paths while the
// shared session stays up.
func (c *Client) Retrieve(ctx context.Context, date string) ([]byte, *domain.Error) {
	start := time.Now()
	defer func() {
		metrics.FetchLatency.Observe(time.Since(start).Seconds())
	}()

	endpoint := c.ScheduleURL(date)

	bc, err := c.session.NewContext(ctx)
	if err != nil {
		slog.Error("Failed to open browsing context", "error", err)
		return nil, domain.UpstreamError("unknown network error occurred")
	}
	defer bc.Close()

	// Land on the site first so client-side anti-bot challenges can resolve
	// before the API is touched.
	navCtx, cancel := context.WithTimeout(ctx, c.cfg.NavTimeout)
	_, err = bc.Navigate(navCtx, c.cfg.LandingURL)
	cancel()
	if err != nil {
		slog.Error("Landing navigation failed", "url", c.cfg.LandingURL, "error", err)
		return nil, domain.UpstreamError("unknown network error occurred")
	}

	select {
	case <-ctx.Done():
		return nil, domain.UpstreamError("unknown network error occurred")
	case <-time.After(c.cfg.SettleDelay):
	}

	var outcomes []attemptOutcome
	for _, strat := range strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.NavTimeout)
		out := strat.run(attemptCtx, bc, endpoint)
		cancel()
		outcomes = append(outcomes, out)

		if out.err == nil && out.transportOK && !looksHTML(out.body) {
			metrics.FetchAttempts.WithLabelValues(strat.name, "ok").Inc()
			slog.Debug("Upstream fetch succeeded", "strategy", strat.name, "status", out.status)
			return []byte(out.body), nil
		}

		metrics.FetchAttempts.WithLabelValues(strat.name, "failed").Inc()
		slog.Warn("Upstream fetch attempt failed",
			"strategy", strat.name, "status", out.status, "error", out.err)
	}

	failure := classify(outcomes)
	slog.Error("All upstream fetch strategies failed", "error", failure.Message)
	return nil, failure
}
