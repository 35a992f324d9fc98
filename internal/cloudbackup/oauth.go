// Package cloudbackup connects the device to a personal cloud drive and keeps
// JSON backups there. It is separate from the hosted store and never takes part
// in migration.
package cloudbackup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/projectsanctuary/sanctuary/config"
)

type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderDropbox  Provider = "dropbox"
	ProviderOneDrive Provider = "onedrive"
)

var (
	ErrUnknownProvider = errors.New("unknown cloud provider")
	ErrNotConfigured   = errors.New("cloud provider is not configured")
	ErrCodeRequired    = errors.New("authorization code is required")
)

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderGoogle, ProviderDropbox, ProviderOneDrive:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Token is the exchange result handed back to the client.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// OAuth builds authorization URLs and exchanges codes for the three providers.
type OAuth struct {
	configs map[Provider]*oauth2.Config
}

func NewOAuth(cfg config.CloudStorageConfig) *OAuth {
	site := strings.TrimRight(cfg.SiteURL, "/")
	return &OAuth{configs: map[Provider]*oauth2.Config{
		ProviderGoogle: {
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  site + "/auth/google-callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/drive.file",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		ProviderDropbox: {
			ClientID:     cfg.DropboxClientID,
			ClientSecret: cfg.DropboxClientSecret,
			RedirectURL:  site + "/auth/dropbox-callback",
			Endpoint:     endpoints.Dropbox,
		},
		ProviderOneDrive: {
			ClientID:     cfg.OneDriveClientID,
			ClientSecret: cfg.OneDriveSecret,
			RedirectURL:  site + "/auth/onedrive-callback",
			Scopes:       []string{"Files.ReadWrite", "offline_access"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		},
	}}
}

func (o *OAuth) config(p Provider) (*oauth2.Config, error) {
	c, ok := o.configs[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	if c.ClientID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, p)
	}
	return c, nil
}

// AuthURL returns the consent page for p. Google asks for offline access so a
// refresh token comes back.
func (o *OAuth) AuthURL(p Provider, state string) (string, error) {
	c, err := o.config(p)
	if err != nil {
		return "", err
	}
	var opts []oauth2.AuthCodeOption
	if p == ProviderGoogle {
		opts = append(opts, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	}
	return c.AuthCodeURL(state, opts...), nil
}

func (o *OAuth) Exchange(ctx context.Context, p Provider, code string) (Token, error) {
	c, err := o.config(p)
	if err != nil {
		return Token{}, err
	}
	if strings.TrimSpace(code) == "" {
		return Token{}, ErrCodeRequired
	}

	tok, err := c.Exchange(ctx, code)
	if err != nil {
		return Token{}, fmt.Errorf("exchange %s code: %w", p, err)
	}

	out := Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		out.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	return out, nil
}
