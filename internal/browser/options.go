package browser

import "time"

const (
	// desktopUserAgent is pinned so the ledger site serves the desktop
	// markup the selectors were written against.
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:70.0) Gecko/20100101 Firefox/70.0"

	defaultWaitTimeout = 30 * time.Second
	defaultSlowMo      = 100 * time.Millisecond
)

// Options configure the Chrome launch and per-wait behavior.
type Options struct {
	// Headless runs Chrome without a display. On by default.
	Headless bool
	// ExecPath points at a custom Chromium binary. Empty means whatever
	// chromedp finds on the host.
	ExecPath string
	// NoSandbox disables the Chrome sandbox, needed in most containers.
	NoSandbox bool
	// WaitTimeout bounds every element wait and navigation.
	WaitTimeout time.Duration
	// SlowMo is inserted after each action to let the site's scripts
	// catch up, mirroring the timing the flows were tuned for.
	SlowMo time.Duration
}

// DefaultOptions returns the launch configuration used when nothing is
// overridden: headless, sandboxless, desktop user agent.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		NoSandbox:   true,
		WaitTimeout: defaultWaitTimeout,
		SlowMo:      defaultSlowMo,
	}
}

func (o Options) waitTimeout() time.Duration {
	if o.WaitTimeout <= 0 {
		return defaultWaitTimeout
	}
	return o.WaitTimeout
}
