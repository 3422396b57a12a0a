package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/medreg"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRecycleAfter is the number of pages a browser process serves
// before it is replaced.
const DefaultRecycleAfter = 75

// Session owns one headless Chrome process and swaps it for a fresh one
// after it has opened recycleAfter pages.
//
// Session is safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	browser      *rod.Browser
	launcher     *launcher.Launcher
	opened       int
	recycleAfter int
	launches     int
	closed       bool
}

// NewSession launches Chrome. A recycleAfter of zero or less selects
// DefaultRecycleAfter.
func NewSession(recycleAfter int) (*Session, error) {
	if recycleAfter <= 0 {
		recycleAfter = DefaultRecycleAfter
	}
	s := &Session{recycleAfter: recycleAfter}
	if err := s.launch(); err != nil {
		return nil, err
	}
	return s, nil
}

// Page opens a blank tab, replacing the browser first when it has served
// its share of pages.
func (s *Session) Page() (*rod.Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, medreg.Errorf(medreg.EINVALID, "browser session closed")
	}
	if s.opened >= s.recycleAfter {
		s.recycle()
	}
	s.opened++
	browser := s.browser
	s.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}

// Launches reports how many browser processes the session has started.
func (s *Session) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// PID returns the process ID of the current launcher, or 0 after Close.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launcher == nil {
		return 0
	}
	return s.launcher.PID()
}

// Close shuts the browser down. Further calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := shutdown(s.browser, s.launcher)
	s.browser, s.launcher = nil, nil
	return err
}

// launch must be called with mu held or before the session is shared.
func (s *Session) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("lang", "de-DE").
		Leakless(true).
		Headless(true)

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connect browser: %w", err)
	}

	s.browser, s.launcher = browser, l
	s.opened = 0
	s.launches++
	return nil
}

// recycle keeps the current browser if a replacement cannot be started.
func (s *Session) recycle() {
	oldBrowser, oldLauncher := s.browser, s.launcher
	if err := s.launch(); err != nil {
		s.browser, s.launcher = oldBrowser, oldLauncher
		return
	}
	_ = shutdown(oldBrowser, oldLauncher)
}

func shutdown(b *rod.Browser, l *launcher.Launcher) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}
