package gcalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// DefaultTokenPath is where installed-app tokens live when no path is configured.
const DefaultTokenPath = "token.json"

// InstalledAppConfig parses OAuth desktop-app credentials for the Calendar scope.
func InstalledAppConfig(credentialsJSON []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth credentials: %w", err)
	}
	return cfg, nil
}

// AuthCodeURL is the consent page the operator opens once to issue a token.
func AuthCodeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// ExchangeAndSave trades an authorization code for a token and stores it at tokenPath.
func ExchangeAndSave(ctx context.Context, cfg *oauth2.Config, code, tokenPath string) error {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	return SaveToken(tokenPath, tok)
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(tokenPath string, tok *oauth2.Token) error {
	if tokenPath == "" {
		tokenPath = DefaultTokenPath
	}
	f, err := os.OpenFile(tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", tokenPath, err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", tokenPath, err)
	}
	return f.Close()
}

// LoadToken reads a token written by SaveToken.
func LoadToken(tokenPath string) (*oauth2.Token, error) {
	if tokenPath == "" {
		tokenPath = DefaultTokenPath
	}
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tokenPath, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse %s: %w", tokenPath, err)
	}
	return &tok, nil
}
