package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// CredentialProvider hands the gateway an authorized HTTP client.  It keeps
// authentication mechanics out of the business logic.
type CredentialProvider interface {
	Client(ctx context.Context) (*http.Client, error)
}

// DefaultProvider uses application default credentials (service account
// key, workload identity or gcloud user credentials).
type DefaultProvider struct{}

// Client implements CredentialProvider.
func (DefaultProvider) Client(ctx context.Context) (*http.Client, error) {
	return google.DefaultClient(context.WithoutCancel(ctx), sheetsv4.SpreadsheetsScope)
}

const (
	tokenFileName = "token.json"
	callbackPath  = "/Callback"
)

// InstalledAppProvider runs the OAuth installed-application flow: it loads
// the client secret file, reuses a token persisted in TokensDir, and
// otherwise opens the consent page in a browser and waits for the redirect
// on a loopback receiver listening on Port.
type InstalledAppProvider struct {
	CredentialsFile string
	TokensDir       string
	Port            int
	// OpenURL opens the consent page.  Defaults to browser.OpenURL.
	OpenURL func(url string) error
	Logger  *slog.Logger
}

// Client implements CredentialProvider.
func (p *InstalledAppProvider) Client(ctx context.Context) (*http.Client, error) {
	secret, err := os.ReadFile(p.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, sheetsv4.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	path := filepath.Join(p.TokensDir, tokenFileName)
	tok, err := loadToken(path)
	if err != nil {
		if tok, err = p.authorize(ctx, conf); err != nil {
			return nil, err
		}
		if err := saveToken(path, tok); err != nil {
			p.logger().Warn("could not persist oauth token", "path", path, "error", err)
		}
	}
	// Refreshes outlive the call that dialed the service.
	bg := context.WithoutCancel(ctx)
	src := &persistingSource{base: conf.TokenSource(bg, tok), path: path, last: tok.AccessToken}
	return oauth2.NewClient(bg, oauth2.ReuseTokenSource(tok, src)), nil
}

func (p *InstalledAppProvider) authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", p.Port))
	if err != nil {
		return nil, fmt.Errorf("oauth receiver: %w", err)
	}
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d%s", ln.Addr().(*net.TCPAddr).Port, callbackPath)

	state, err := randomState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	codes := make(chan string, 1)
	errs := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusForbidden)
			select {
			case errs <- fmt.Errorf("oauth: %s", q.Get("error")):
			default:
			}
			return
		}
		select {
		case codes <- q.Get("code"):
		default:
		}
		fmt.Fprintln(w, "Received verification code. You may now close this window.")
	})
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	p.logger().Info("please open the following address in your browser", "url", authURL)
	open := p.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(authURL); err != nil {
		p.logger().Warn("could not open browser", "error", err)
	}

	select {
	case code := <-codes:
		tok, err := conf.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("oauth exchange: %w", err)
		}
		return tok, nil
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *InstalledAppProvider) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// persistingSource writes refreshed tokens back to disk.
type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		_ = saveToken(s.path, tok)
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("empty token")
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
