package ledger

import (
	"os"
	"time"

	"github.com/zansync/zansync/internal/browser"
)

const defaultOTPProbeTimeout = 5 * time.Second

// Config holds the ledger credentials and engine knobs. Zero-value fields
// fall back to environment variables, so an empty Config works for a host
// with MONEYFORWARD_* set.
type Config struct {
	Email       string
	Password    string
	TwoFASecret string

	// Debug enables failure snapshots (HTML dump + screenshot) written
	// into DebugDir, or the working directory when DebugDir is empty.
	Debug    bool
	DebugDir string

	Browser browser.Options

	// OTPProbeTimeout bounds the short wait that decides whether the
	// site is challenging for a one-time passcode.
	OTPProbeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Email == "" {
		c.Email = os.Getenv("MONEYFORWARD_USER")
	}
	if c.Password == "" {
		c.Password = os.Getenv("MONEYFORWARD_PASSWORD")
	}
	if c.TwoFASecret == "" {
		c.TwoFASecret = os.Getenv("MONEYFORWARD_2FA_SECRET")
	}
	if c.Browser == (browser.Options{}) {
		c.Browser = browser.DefaultOptions()
	}
	if c.Browser.ExecPath == "" {
		c.Browser.ExecPath = os.Getenv("CHROMIUM_BINARY_PATH")
	}
	if c.OTPProbeTimeout <= 0 {
		c.OTPProbeTimeout = defaultOTPProbeTimeout
	}
	return c
}
