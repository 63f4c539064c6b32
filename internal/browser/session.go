package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/pfrederiksen/timebox/internal/logger"
)

const DefaultNavigateTimeout = 30 * time.Second

var ErrNoPage = errors.New("browser: session has no page")

// Config selects how Chrome is obtained and which page is opened.
type Config struct {
	// RemoteURL is the DevTools websocket of a running Chrome. Empty
	// launches a local one.
	RemoteURL string
	Headless  bool
	// Stealth applies go-rod/stealth evasions to the tab.
	Stealth         bool
	PageURL         string
	NavigateTimeout time.Duration
}

// Session is a connected browser with one open tab.
type Session struct {
	Browser *rod.Browser
	Page    *rod.Page

	lnch *launcher.Launcher
}

// Open connects to (or launches) Chrome, opens a tab and navigates it to
// cfg.PageURL when set.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	s := &Session{}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		logger.Info("browser: launched local chrome", logger.Fields{"headless": cfg.Headless})
	} else {
		logger.Info("browser: connecting to remote", logger.Fields{"url": wsURL})
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.Browser = b

	var page *rod.Page
	var err error
	if cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	s.Page = page

	if cfg.PageURL != "" {
		if err := s.Navigate(ctx, cfg.PageURL, cfg.NavigateTimeout); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Navigate loads pageURL in the session's tab and waits for the load event.
func (s *Session) Navigate(ctx context.Context, pageURL string, timeout time.Duration) error {
	if s.Page == nil {
		return ErrNoPage
	}
	if timeout <= 0 {
		timeout = DefaultNavigateTimeout
	}

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := s.Page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn("browser: wait load timeout", logger.Fields{"url": pageURL, "error": err.Error()})
	}
	return nil
}

// Close closes the browser and, when it was launched locally, removes its
// profile directory.
func (s *Session) Close() error {
	var err error
	if s.Browser != nil {
		err = s.Browser.Close()
		s.Browser = nil
		s.Page = nil
	}
	s.cleanup()
	return err
}

func (s *Session) cleanup() {
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}
