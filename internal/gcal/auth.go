package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// tokenFilePath returns the path to the stored token file.
func tokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".invrec", "auth", "google_token.json"), nil
}

// OAuthConfig returns the oauth2.Config for the Google Calendar API.
// Client ID and secret come from GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET,
// loadable from a .env file at startup.
func OAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// loadToken loads a previously saved token from disk.
func loadToken() (*oauth2.Token, error) {
	path, err := tokenFilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk.
func saveToken(tok *oauth2.Token) error {
	path, err := tokenFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate runs the out-of-band authorization flow: prints the consent
// URL, reads the pasted code from stdin, exchanges it and stores the token.
func Authenticate(ctx context.Context) error {
	cfg, err := OAuthConfig()
	if err != nil {
		return err
	}

	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println()
	fmt.Println("Open the following link in your browser and authorize access:")
	fmt.Printf("  %s\n", url)
	fmt.Println()
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if err := saveToken(tok); err != nil {
		return err
	}
	fmt.Println("Authorized. Token saved.")
	return nil
}

// TokenSource returns a self-refreshing token source for API clients.
// It loads the saved token, refreshes it if expired, or asks the caller to
// run the auth command when no usable token exists.
func TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := loadToken()
	if err != nil {
		// Corrupt token, warn and require re-auth.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		tok = nil
	}
	if tok == nil {
		return nil, fmt.Errorf("not authenticated, run 'invrec gcal auth' first")
	}

	ts := cfg.TokenSource(ctx, tok)
	if !tok.Valid() {
		refreshed, err := ts.Token()
		if err != nil {
			return nil, fmt.Errorf("token refresh failed, run 'invrec gcal auth' again: %w", err)
		}
		if err := saveToken(refreshed); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save refreshed token: %v\n", err)
		}
	}
	return ts, nil
}
