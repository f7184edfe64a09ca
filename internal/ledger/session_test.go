package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// the shared secret is any valid base32 string; codes are generated, not
// compared against a fixture.
const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func TestLoginWithoutOTP(t *testing.T) {
	fb := newFakeBrowser(nil)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	require.NoError(t, acc.sess.ensure(context.Background()))
	require.True(t, acc.sess.initiated)

	page := fb.pages[0]
	require.Equal(t, []string{"user@example.com"}, page.typed(selEmailInput.Query))
	require.Equal(t, []string{"hunter2"}, page.typed(selPassword.Query))
	require.Equal(t, 2, page.countOp("click", selSubmit.Query), "email submit and password submit")
	require.Empty(t, page.typed(selOTPInput.Query), "OTP path must not be taken")
	require.Equal(t, 1, page.countOp("wait", selPostLogin.Query))
}

func TestLoginWithOTP(t *testing.T) {
	template := func() *fakePage {
		return &fakePage{missing: map[string]bool{}} // OTP marker visible
	}
	fb := newFakeBrowser(template)
	cfg := testConfig()
	cfg.TwoFASecret = testTOTPSecret
	acc := newCashAccount(cfg, zap.NewNop(), fb.launcher())

	require.NoError(t, acc.sess.ensure(context.Background()))

	page := fb.pages[0]
	codes := page.typed(selOTPInput.Query)
	require.Len(t, codes, 1)
	require.Len(t, codes[0], 6, "TOTP codes are 6 digits")
	require.Equal(t, 3, page.countOp("click", selSubmit.Query), "email, password and OTP submits")
}

func TestLoginOTPRequiredWithoutSecret(t *testing.T) {
	template := func() *fakePage {
		return &fakePage{missing: map[string]bool{}}
	}
	fb := newFakeBrowser(template)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	err := acc.sess.ensure(context.Background())

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.False(t, acc.sess.initiated)
	require.Empty(t, fb.pages[0].typed(selOTPInput.Query))
}

func TestLoginFailsWhenNoMarkerAppears(t *testing.T) {
	template := func() *fakePage {
		p := newFakePage()
		p.missing[selPostLogin.Query] = true
		return p
	}
	fb := newFakeBrowser(template)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	err := acc.sess.ensure(context.Background())

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "post-login marker", authErr.Step)
}

func TestLoginToleratesMissingSignInLink(t *testing.T) {
	template := func() *fakePage {
		p := newFakePage()
		p.missing[selSignInLink.Query] = true
		return p
	}
	fb := newFakeBrowser(template)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	require.NoError(t, acc.sess.ensure(context.Background()))
}

func TestEnsureSessionIsIdempotent(t *testing.T) {
	fb := newFakeBrowser(nil)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	ctx := context.Background()
	require.NoError(t, acc.sess.ensure(ctx))
	require.NoError(t, acc.sess.ensure(ctx))

	require.Equal(t, 1, fb.launches)
	require.Len(t, fb.pages, 1)
}

func TestCurrentPageBeforeEnsure(t *testing.T) {
	acc := newCashAccount(testConfig(), zap.NewNop(), failingLauncher)

	_, err := acc.sess.currentPage()
	require.ErrorIs(t, err, ErrSessionNotStarted)
}

func TestNewPageReplacesCurrent(t *testing.T) {
	fb := newFakeBrowser(nil)
	acc := newCashAccount(testConfig(), zap.NewNop(), fb.launcher())

	ctx := context.Background()
	require.NoError(t, acc.sess.ensure(ctx))

	first := fb.pages[0]
	page, err := acc.sess.newPage(ctx)
	require.NoError(t, err)
	require.True(t, first.closed, "previous page must be closed")

	current, err := acc.sess.currentPage()
	require.NoError(t, err)
	require.Same(t, page, current)
}
