package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/zansync/zansync/internal/browser"
)

// launcher starts the automation runtime. Injected so tests can swap in a
// fake browser.
type launcher func(ctx context.Context, opts browser.Options) (browser.Browser, error)

// session owns the authenticated browser state. Lifecycle:
// uninitialized -> authenticating -> authenticated -> closed. It is not
// safe for concurrent use; the facade's sequential-call discipline is the
// only mutual exclusion (a documented caller obligation).
type session struct {
	cfg    Config
	logger *zap.Logger
	launch launcher

	browser   browser.Browser
	page      browser.Page
	initiated bool
}

// ensure lazily launches the browser and runs the login protocol.
// Idempotent: a second call while authenticated is a no-op.
func (s *session) ensure(ctx context.Context) error {
	if s.initiated {
		return nil
	}

	b, err := s.launch(ctx, s.cfg.Browser)
	if err != nil {
		return errors.Wrap(err, "launch browser")
	}
	s.browser = b

	page, err := b.NewPage(ctx)
	if err != nil {
		return errors.Wrap(err, "open page")
	}
	s.page = page

	if err := s.login(ctx, page); err != nil {
		return err
	}

	s.initiated = true
	s.logger.Info("ledger session established")
	return nil
}

// currentPage returns the active page handle.
func (s *session) currentPage() (browser.Page, error) {
	if s.page == nil {
		return nil, ErrSessionNotStarted
	}
	return s.page, nil
}

// newPage opens a fresh tab and makes it the session's current page,
// closing the previous one. Used by operations that must not disturb
// state left on the old page.
func (s *session) newPage(ctx context.Context) (browser.Page, error) {
	if s.browser == nil {
		return nil, ErrSessionNotStarted
	}
	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open page")
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	s.page = page
	return page, nil
}

// close tears down the browser. Safe to call when never initialized.
func (s *session) close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	s.page = nil
	s.initiated = false
	return err
}

// login drives the site's login protocol:
// credentials, then either the post-login navigation marker or a
// one-time-passcode challenge resolved with a TOTP code. Any step whose
// element never appears aborts the protocol; login is never retried here.
func (s *session) login(ctx context.Context, page browser.Page) error {
	if err := page.Navigate(ctx, loginURL); err != nil {
		return &AuthenticationError{Step: "open login page", Cause: err}
	}

	// Sign-in entry link. The site shows it on some variants of the login
	// page only, so its absence is not fatal.
	if err := page.Click(ctx, selSignInLink); err != nil && !isElementTimeout(err) {
		return &AuthenticationError{Step: "sign-in link", Cause: err}
	}

	if err := page.Type(ctx, selEmailInput, s.cfg.Email); err != nil {
		return &AuthenticationError{Step: "email", Cause: err}
	}
	if err := page.Click(ctx, selSubmit); err != nil {
		return &AuthenticationError{Step: "submit email", Cause: err}
	}
	if err := page.Type(ctx, selPassword, s.cfg.Password); err != nil {
		return &AuthenticationError{Step: "password", Cause: err}
	}
	if err := page.Click(ctx, selSubmit); err != nil {
		return &AuthenticationError{Step: "submit password", Cause: err}
	}

	// Short probe: does the site challenge for a one-time passcode?
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.OTPProbeTimeout)
	otpErr := page.WaitVisible(probeCtx, selOTPMarker)
	cancel()

	switch {
	case otpErr == nil:
		if err := s.enterOTP(ctx, page); err != nil {
			return err
		}
	case isElementTimeout(otpErr):
		// no challenge, continue to the post-login marker
	default:
		return &AuthenticationError{Step: "one-time passcode probe", Cause: otpErr}
	}

	if err := page.WaitVisible(ctx, selPostLogin); err != nil {
		return &AuthenticationError{Step: "post-login marker", Cause: err}
	}
	return nil
}

func (s *session) enterOTP(ctx context.Context, page browser.Page) error {
	if s.cfg.TwoFASecret == "" {
		return &AuthenticationError{
			Step:  "one-time passcode",
			Cause: errors.New("no second-factor secret configured"),
		}
	}

	code, err := totp.GenerateCode(s.cfg.TwoFASecret, time.Now())
	if err != nil {
		return &AuthenticationError{Step: "one-time passcode", Cause: errors.Wrap(err, "generate code")}
	}
	s.logger.Debug("entering one-time passcode")

	if err := page.Type(ctx, selOTPInput, code); err != nil {
		return &AuthenticationError{Step: "one-time passcode", Cause: err}
	}
	if err := page.Click(ctx, selSubmit); err != nil {
		return &AuthenticationError{Step: "submit one-time passcode", Cause: err}
	}
	return nil
}

func isElementTimeout(err error) bool {
	var te *browser.ElementTimeoutError
	return errors.As(err, &te)
}
