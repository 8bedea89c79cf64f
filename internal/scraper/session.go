package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

const (
	usernameField = "username"
	passwordField = "password"
)

// Login posts the configured credentials to the login page once per process.
// The session cookie stays in the client's jar. It is a no-op when no login
// path is configured, in which case basic auth is sent on every request.
func (s *Scraper) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedIn || s.cfg.LoginPath == "" {
		return nil
	}

	s.logger.Info("Logging in to court site", "path", s.cfg.LoginPath, "user", s.cfg.Username)

	resp, err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    s.cfg.LoginPath,
		Form: map[string]string{
			usernameField: s.cfg.Username,
			passwordField: s.cfg.Password,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if msg, found := findBanner(doc); found {
		return fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}
	// the site answers a rejected login with the form again
	if doc.Find("input[type=password]").Length() > 0 {
		return fmt.Errorf("%w: login form returned", ErrLoginFailed)
	}

	s.loggedIn = true
	s.logger.Info("Logged in to court site")
	return nil
}
