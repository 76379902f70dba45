package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/chromedp/chromedp"
)

// Requires a local Chrome. Verifies that two browsing contexts from the same
// session do not see each other's cookies or localStorage.
func TestNewContext_IsolatedState(t *testing.T) {
	if os.Getenv("E2E_BROWSER") == "" {
		t.Skip("Skipping browser E2E test. Set E2E_BROWSER=true to run.")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	session := NewChromeSession(Options{
		UserAgent: "test-agent",
		Locale:    "en-US",
		Headless:  true,
	})
	defer session.Close()

	ctx := context.Background()

	first, err := session.NewContext(ctx)
	if err != nil {
		t.Fatalf("Failed to open first context: %v", err)
	}
	defer first.Close()
	if _, err := first.Navigate(ctx, srv.URL); err != nil {
		t.Fatalf("First navigation failed: %v", err)
	}
	if err := chromedp.Run(first.(*chromeContext).ctx, chromedp.Evaluate(
		`(() => { document.cookie = "marker=one"; localStorage.setItem("marker", "one"); return true; })()`,
		nil,
	)); err != nil {
		t.Fatalf("Failed to write state in first context: %v", err)
	}

	second, err := session.NewContext(ctx)
	if err != nil {
		t.Fatalf("Failed to open second context: %v", err)
	}
	defer second.Close()
	if _, err := second.Navigate(ctx, srv.URL); err != nil {
		t.Fatalf("Second navigation failed: %v", err)
	}

	var leaked string
	if err := chromedp.Run(second.(*chromeContext).ctx, chromedp.Evaluate(
		`document.cookie + "|" + (localStorage.getItem("marker") || "")`,
		&leaked,
	)); err != nil {
		t.Fatalf("Failed to read state in second context: %v", err)
	}
	if leaked != "|" {
		t.Errorf("second context sees first context's state: %q", leaked)
	}
}
