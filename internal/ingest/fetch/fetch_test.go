package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusdining/dininghours/internal/core/config"
	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/browser"
)

const challengePage = `<!DOCTYPE html><html><head><title>Attention Required! | Cloudflare</title></head></html>`

// fakeContext scripts the outcome of each transport strategy.
type fakeContext struct {
	fetchResp *browser.FetchResponse
	fetchErr  error
	navResp   map[string]*browser.PageResponse // by URL; nil entry means error
	navErr    error
	closed    int
}

func (f *fakeContext) Navigate(ctx context.Context, url string) (*browser.PageResponse, error) {
	if resp, ok := f.navResp[url]; ok {
		return resp, nil
	}
	if f.navErr != nil {
		return nil, f.navErr
	}
	return &browser.PageResponse{Status: 200, Body: "<html>landing</html>"}, nil
}

func (f *fakeContext) Fetch(ctx context.Context, url string) (*browser.FetchResponse, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchResp, nil
}

func (f *fakeContext) Close() error {
	f.closed++
	return nil
}

type fakeSession struct {
	ctx      *fakeContext
	contexts int
	err      error
}

func (f *fakeSession) NewContext(ctx context.Context) (browser.Context, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contexts++
	return f.ctx, nil
}

func testConfig() config.UpstreamConfig {
	return config.UpstreamConfig{
		BaseURL:     "https://api.example.edu",
		SiteID:      "site123",
		LandingURL:  "https://www.example.edu",
		UserAgent:   "test-agent",
		Locale:      "en-US",
		SettleDelay: time.Millisecond,
		NavTimeout:  100 * time.Millisecond,
	}
}

func TestRetrieve_InSessionFetchSucceeds(t *testing.T) {
	fc := &fakeContext{
		fetchResp: &browser.FetchResponse{OK: true, Status: 200, Body: `{"theLocations":[{}]}`},
	}
	session := &fakeSession{ctx: fc}
	client := New(session, testConfig())

	payload, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr != nil {
		t.Fatalf("Retrieve failed: %v", ferr)
	}
	if string(payload) != `{"theLocations":[{}]}` {
		t.Errorf("unexpected payload: %s", payload)
	}
	if fc.closed == 0 {
		t.Error("browsing context was not closed")
	}
}

func TestRetrieve_FallbackToDirectNavigation(t *testing.T) {
	// First strategy returns an HTML challenge; direct navigation yields JSON.
	cfg := testConfig()
	client := New(nil, cfg)
	endpoint := client.ScheduleURL("2023-10-27")

	fc := &fakeContext{
		fetchResp: &browser.FetchResponse{OK: true, Status: 200, Body: challengePage},
		navResp: map[string]*browser.PageResponse{
			endpoint: {Status: 200, Body: `{"theLocations":[{"id":"1"}]}`},
		},
	}
	session := &fakeSession{ctx: fc}
	client = New(session, cfg)

	payload, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr != nil {
		t.Fatalf("Retrieve failed: %v", ferr)
	}
	if string(payload) != `{"theLocations":[{"id":"1"}]}` {
		t.Errorf("unexpected payload: %s", payload)
	}
	if fc.closed == 0 {
		t.Error("browsing context was not closed")
	}
}

func TestRetrieve_BotBlockClassification(t *testing.T) {
	cfg := testConfig()
	endpoint := New(nil, cfg).ScheduleURL("2023-10-27")

	fc := &fakeContext{
		fetchResp: &browser.FetchResponse{OK: false, Status: 403, Body: challengePage},
		navResp: map[string]*browser.PageResponse{
			endpoint: {Status: 403, Body: challengePage},
		},
	}
	client := New(&fakeSession{ctx: fc}, cfg)

	_, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr == nil {
		t.Fatal("expected failure")
	}
	if ferr.Kind != domain.ErrUpstream {
		t.Errorf("expected upstream kind, got %s", ferr.Kind)
	}
	if ferr.Message != "blocked by Cloudflare bot protection" {
		t.Errorf("unexpected message: %s", ferr.Message)
	}
}

func TestRetrieve_NonJSONClassification(t *testing.T) {
	cfg := testConfig()
	endpoint := New(nil, cfg).ScheduleURL("2023-10-27")

	// The in-session fetch reaches the API but the body is HTML that is not
	// a challenge page; the message carries the last observed status.
	fc := &fakeContext{
		fetchResp: &browser.FetchResponse{OK: true, Status: 200, Body: "<html>maintenance</html>"},
		navResp: map[string]*browser.PageResponse{
			endpoint: {Status: 503, Body: "<html>maintenance</html>"},
		},
	}
	client := New(&fakeSession{ctx: fc}, cfg)

	_, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr == nil {
		t.Fatal("expected failure")
	}
	if ferr.Message != "unexpected non-JSON from API (status 503)" {
		t.Errorf("unexpected message: %s", ferr.Message)
	}
}

func TestRetrieve_GenericWhenOnlyNavigationReaches(t *testing.T) {
	cfg := testConfig()
	endpoint := New(nil, cfg).ScheduleURL("2023-10-27")

	// The in-session fetch never reaches the API; direct navigation gets a
	// 200 HTML page. That does not prove the API answered, so the failure
	// stays generic rather than claiming non-JSON from the API.
	fc := &fakeContext{
		fetchResp: &browser.FetchResponse{OK: false, Status: 0, Body: "TypeError: Failed to fetch"},
		navResp: map[string]*browser.PageResponse{
			endpoint: {Status: 200, Body: "<html>interstitial</html>"},
		},
	}
	client := New(&fakeSession{ctx: fc}, cfg)

	_, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr == nil {
		t.Fatal("expected failure")
	}
	if ferr.Kind != domain.ErrUpstream {
		t.Errorf("expected upstream kind, got %s", ferr.Kind)
	}
	if ferr.Message != "browser fetch failed (CORS/bot protection)" {
		t.Errorf("unexpected message: %s", ferr.Message)
	}
}

func TestRetrieve_TransportErrors(t *testing.T) {
	fc := &fakeContext{
		fetchErr: errors.New("net::ERR_NAME_NOT_RESOLVED"),
		navErr:   errors.New("net::ERR_NAME_NOT_RESOLVED"),
		navResp:  map[string]*browser.PageResponse{},
	}
	// Landing navigation itself fails.
	client := New(&fakeSession{ctx: fc}, testConfig())

	_, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr == nil {
		t.Fatal("expected failure")
	}
	if ferr.Kind != domain.ErrUpstream {
		t.Errorf("expected upstream kind, got %s", ferr.Kind)
	}
	if ferr.Message != "unknown network error occurred" {
		t.Errorf("unexpected message: %s", ferr.Message)
	}
}

func TestRetrieve_SessionUnavailable(t *testing.T) {
	client := New(&fakeSession{err: errors.New("browser crashed")}, testConfig())

	_, ferr := client.Retrieve(context.Background(), "2023-10-27")
	if ferr == nil {
		t.Fatal("expected failure")
	}
	if ferr.Kind != domain.ErrUpstream {
		t.Errorf("expected upstream kind, got %s", ferr.Kind)
	}
}

func TestScheduleURL(t *testing.T) {
	client := New(nil, testConfig())
	want := "https://api.example.edu/locations/weekly_schedule?site_id=site123&date=2023-10-27"
	if got := client.ScheduleURL("2023-10-27"); got != want {
		t.Errorf("ScheduleURL = %q, want %q", got, want)
	}
}

func TestLooksHTML(t *testing.T) {
	tests := []struct {
		body   string
		expect bool
	}{
		{"<html></html>", true},
		{"  \n\t<doctype html>", true},
		{`{"theLocations": []}`, false},
		{"", false},
		{"plain text", false},
	}
	for _, tt := range tests {
		if got := looksHTML(tt.body); got != tt.expect {
			t.Errorf("looksHTML(%q) = %v, want %v", tt.body, got, tt.expect)
		}
	}
}
