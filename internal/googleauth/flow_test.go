package googleauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// newTokenServer fakes the provider's token endpoint for the code exchange.
func newTokenServer(t *testing.T, exchanges *atomic.Int32) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing exchange form: %v", err)
		}
		if got := r.FormValue("code"); got != "good-code" {
			t.Errorf("exchange used code %q, want good-code", got)
		}
		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"exchanged-access","refresh_token":"exchanged-refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type flowResult struct {
	token *oauth2.Token
	err   error
}

// startAuthFlow runs runAuthFlow in the background on a free port so the
// test can play the role of the redirecting browser.
func startAuthFlow(t *testing.T, conf *oauth2.Config, state string, timeout time.Duration) (int, <-chan flowResult) {
	t.Helper()

	port := freePort(t)
	results := make(chan flowResult, 1)
	go func() {
		token, err := runAuthFlow(context.Background(), conf, port, state, timeout)
		results <- flowResult{token: token, err: err}
	}()
	return port, results
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	if err := listener.Close(); err != nil {
		t.Fatalf("releasing free port: %v", err)
	}
	return port
}

// getCallback delivers one redirect to the flow's local listener, retrying
// briefly while the listener comes up.
func getCallback(t *testing.T, port int, query url.Values) {
	t.Helper()

	callbackURL := fmt.Sprintf("http://localhost:%d/oauth2callback?%s", port, query.Encode())
	var lastErr error
	for i := 0; i < 100; i++ {
		resp, err := http.Get(callbackURL)
		if err == nil {
			if err := resp.Body.Close(); err != nil {
				t.Fatalf("closing callback response: %v", err)
			}
			return
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("callback never reached the listener: %v", lastErr)
}

func awaitResult(t *testing.T, results <-chan flowResult) flowResult {
	t.Helper()
	select {
	case result := <-results:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("authorization flow did not finish")
		return flowResult{}
	}
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  tokenURL + "/auth",
			TokenURL: tokenURL + "/token",
		},
	}
}

func TestAuthFlowExchangesDeliveredCode(t *testing.T) {
	var exchanges atomic.Int32
	tokenSrv := newTokenServer(t, &exchanges)

	const state = "known-state"
	port, results := startAuthFlow(t, testConfig(tokenSrv), state, time.Minute)

	getCallback(t, port, url.Values{"code": {"good-code"}, "state": {state}})

	result := awaitResult(t, results)
	if result.err != nil {
		t.Fatalf("flow failed: %v", result.err)
	}
	if result.token.AccessToken != "exchanged-access" {
		t.Errorf("unexpected access token %q", result.token.AccessToken)
	}
	if result.token.RefreshToken != "exchanged-refresh" {
		t.Errorf("unexpected refresh token %q", result.token.RefreshToken)
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("expected exactly one code exchange, got %d", got)
	}

	// The listener is one-shot: once the flow resolved it must be gone.
	_, err := http.Get(fmt.Sprintf("http://localhost:%d/oauth2callback", port))
	if err == nil {
		t.Error("redirect listener still accepting connections after the flow finished")
	}
}

func TestAuthFlowRejectsErrorParam(t *testing.T) {
	const state = "known-state"
	port, results := startAuthFlow(t, testConfig("http://localhost:0"), state, time.Minute)

	getCallback(t, port, url.Values{"error": {"access_denied"}, "state": {state}})

	result := awaitResult(t, results)
	if result.err == nil {
		t.Fatal("expected flow to fail for error callback")
	}
	if !strings.Contains(result.err.Error(), "access_denied") {
		t.Errorf("error %q should carry the provider's reason", result.err)
	}
}

func TestAuthFlowRejectsMissingCode(t *testing.T) {
	const state = "known-state"
	port, results := startAuthFlow(t, testConfig("http://localhost:0"), state, time.Minute)

	getCallback(t, port, url.Values{"state": {state}})

	result := awaitResult(t, results)
	if result.err == nil {
		t.Fatal("expected flow to fail for callback without a code")
	}
	if !strings.Contains(result.err.Error(), "no authorization code") {
		t.Errorf("unexpected error: %v", result.err)
	}
}

func TestAuthFlowRejectsStateMismatch(t *testing.T) {
	port, results := startAuthFlow(t, testConfig("http://localhost:0"), "expected-state", time.Minute)

	getCallback(t, port, url.Values{"code": {"good-code"}, "state": {"forged-state"}})

	result := awaitResult(t, results)
	if result.err == nil {
		t.Fatal("expected flow to fail for state mismatch")
	}
	if !strings.Contains(result.err.Error(), "state mismatch") {
		t.Errorf("unexpected error: %v", result.err)
	}
}

func TestAuthFlowTimesOut(t *testing.T) {
	_, results := startAuthFlow(t, testConfig("http://localhost:0"), "state", 50*time.Millisecond)

	// No callback ever arrives.
	result := awaitResult(t, results)
	if result.err == nil {
		t.Fatal("expected flow to time out")
	}
	if !strings.Contains(result.err.Error(), "timed out") {
		t.Errorf("unexpected error: %v", result.err)
	}
}
