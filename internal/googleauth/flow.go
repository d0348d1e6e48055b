package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/skratchdot/open-golang/open"
	"golang.org/x/oauth2"

	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

// authorizeViaWeb runs the browser half of the authorization-code grant: it
// binds a one-shot HTTP listener on the fixed redirect port, opens the
// consent URL in the user's browser, waits for exactly one callback and
// exchanges the delivered code for a token. The listener is torn down as
// soon as the first callback resolves.
func authorizeViaWeb(ctx context.Context, conf *oauth2.Config, port int, timeout time.Duration) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	return runAuthFlow(ctx, conf, port, state, timeout)
}

// runAuthFlow owns the listener lifecycle for one authorization attempt.
func runAuthFlow(ctx context.Context, conf *oauth2.Config, port int, state string, timeout time.Duration) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind redirect listener on port %d: %w", port, err)
	}

	// Buffered so a straggling second callback cannot block its handler.
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if authErr := query.Get("error"); authErr != "" {
			_, _ = fmt.Fprintf(w, "Authorization failed: %s", authErr)
			deliverErr(errChan, fmt.Errorf("authorization rejected: %s", authErr))
			return
		}
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliverErr(errChan, errors.New("state mismatch in callback"))
			return
		}
		code := query.Get("code")
		if code == "" {
			_, _ = fmt.Fprint(w, "Authorization failed: no code in callback.")
			deliverErr(errChan, errors.New("no authorization code in callback"))
			return
		}
		_, _ = fmt.Fprint(w, "<html><body><h1>Authorization complete</h1><p>You can close this window and return to the terminal.</p></body></html>")
		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if serveErr := server.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			deliverErr(errChan, fmt.Errorf("redirect listener failed: %w", serveErr))
		}
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Println("Opening your browser to complete Google authorization.")
	fmt.Println("If it does not open, visit this URL:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()

	if err := open.Run(authURL); err != nil {
		logger.Warn("failed to open browser, continue manually", "error", err)
	}

	var authCode string
	select {
	case authCode = <-codeChan:
	case err = <-errChan:
	case <-time.After(timeout):
		err = fmt.Errorf("authorization timed out after %s", timeout)
	case <-ctx.Done():
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("failed to shut down redirect listener", "error", shutdownErr)
	}

	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	logger.Info("authorization code exchanged", "has_refresh_token", token.RefreshToken != "")
	return token, nil
}

func deliverErr(errChan chan error, err error) {
	select {
	case errChan <- err:
	default:
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
