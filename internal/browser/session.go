// Package browser owns the single automatable browsing session and the
// queue that serializes every operation against it.
package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session is one live automated browsing session.
type Session interface {
	// Page returns the session's shared page.
	Page() *rod.Page
	// Connected reports whether the underlying browser still responds.
	Connected() bool
	Close() error
}

// Launcher creates sessions. The coordinator launches lazily on first use
// and relaunches after a session failure.
type Launcher interface {
	Launch() (Session, error)
}

// RodLauncher launches a headless Chromium session via rod.
type RodLauncher struct {
	Headless bool
}

// Launch starts the browser and opens the shared page.
func (l RodLauncher) Launch() (Session, error) {
	lc := launcher.New().Headless(l.Headless)
	controlURL, err := lc.Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		lc.Kill()
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		lc.Kill()
		return nil, err
	}

	return &rodSession{browser: b, launcher: lc, page: page}, nil
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
}

func (s *rodSession) Page() *rod.Page {
	return s.page
}

func (s *rodSession) Connected() bool {
	if s.browser == nil {
		return false
	}
	_, err := proto.BrowserGetVersion{}.Call(s.browser)
	return err == nil
}

func (s *rodSession) Close() error {
	var closeErr error
	if s.browser != nil {
		closeErr = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
	}
	return closeErr
}
