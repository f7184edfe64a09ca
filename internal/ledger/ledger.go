// Package ledger synchronizes normalized balances into the Moneyforward
// web ledger by driving an automated browser session: one shared
// authenticated session, per-operation page leases, create-or-update of
// manual asset rows keyed by substring match, and forensic capture of
// page state on failure.
//
// Operations are strictly sequential; the underlying automation session
// is not safe for concurrent navigation, and callers must await one
// call's completion before starting the next.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zansync/zansync/internal/browser"
	"github.com/zansync/zansync/internal/domain"
)

// CashAccount is the synchronization facade over one ledger login. The
// session is established lazily on the first write call and torn down by
// Finalize. Each write is a single committed unit: on a mid-list failure,
// already-submitted rows stay committed and the remainder is never
// attempted — re-invoking for the rest is the caller's job.
type CashAccount struct {
	cfg    Config
	logger *zap.Logger
	sess   *session
	rec    *recorder
}

// NewCashAccount builds a facade backed by a real Chrome session.
func NewCashAccount(cfg Config, logger *zap.Logger) *CashAccount {
	return newCashAccount(cfg, logger, browser.Launch)
}

func newCashAccount(cfg Config, logger *zap.Logger, launch launcher) *CashAccount {
	cfg = cfg.withDefaults()
	return &CashAccount{
		cfg:    cfg,
		logger: logger,
		sess:   &session{cfg: cfg, logger: logger, launch: launch},
		rec:    &recorder{enabled: cfg.Debug, dir: cfg.DebugDir, logger: logger},
	}
}

// UpdateCryptoBalance upserts every asset into the named manual account.
// It works on a fresh page so a page left open by a previous operation is
// not disturbed. Assets are processed in order, one server-side row
// mutation each.
func (a *CashAccount) UpdateCryptoBalance(ctx context.Context, account string, assets []domain.Asset) error {
	if err := a.sess.ensure(ctx); err != nil {
		a.rec.capture(ctx, a.sess.page)
		return err
	}

	page, err := a.sess.newPage(ctx)
	if err != nil {
		return err
	}

	if err := a.syncAssets(ctx, page, account, assets); err != nil {
		a.rec.capture(ctx, page)
		return err
	}
	return nil
}

func (a *CashAccount) syncAssets(ctx context.Context, page browser.Page, account string, assets []domain.Asset) error {
	if err := a.openAccount(ctx, page, account); err != nil {
		return err
	}
	for _, asset := range assets {
		handle, err := a.resolveRow(ctx, page, asset.Name)
		if err != nil {
			return err
		}
		a.logger.Info("writing asset",
			zap.String("account", account),
			zap.String("asset", asset.Name),
			zap.Bool("update", handle.exists))
		if err := a.apply(ctx, page, handle, asset); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePayBalance writes one rollover balance into the named account's
// balance-history view. It reuses the session's current page, which makes
// it the most order-sensitive operation.
func (a *CashAccount) UpdatePayBalance(ctx context.Context, account string, balance decimal.Decimal) error {
	if err := a.sess.ensure(ctx); err != nil {
		a.rec.capture(ctx, a.sess.page)
		return err
	}

	page, err := a.sess.currentPage()
	if err != nil {
		return err
	}

	if err := a.syncPayBalance(ctx, page, account, balance); err != nil {
		a.rec.capture(ctx, page)
		return err
	}
	return nil
}

func (a *CashAccount) syncPayBalance(ctx context.Context, page browser.Page, account string, balance decimal.Decimal) error {
	if err := a.openAccount(ctx, page, account); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, selBalanceHistory); err != nil {
		return err
	}
	if err := page.Click(ctx, selPayEditButton); err != nil {
		return err
	}
	if err := page.Type(ctx, selRolloverValue, domain.WholeYen(balance)); err != nil {
		return err
	}
	return page.Click(ctx, selPaySubmit)
}

// UpdatePointsBalance rewrites the points value on the named account's
// portfolio edit control. When the session already existed before this
// call it opens a fresh page, isolating this write stream from whatever
// the previous operation left behind.
func (a *CashAccount) UpdatePointsBalance(ctx context.Context, account string, balance decimal.Decimal) error {
	existed := a.sess.initiated
	if err := a.sess.ensure(ctx); err != nil {
		a.rec.capture(ctx, a.sess.page)
		return err
	}

	page, err := a.sess.currentPage()
	if err != nil {
		return err
	}
	if existed {
		page, err = a.sess.newPage(ctx)
		if err != nil {
			return err
		}
	}

	if err := a.syncPointsBalance(ctx, page, account, balance); err != nil {
		a.rec.capture(ctx, page)
		return err
	}
	return nil
}

func (a *CashAccount) syncPointsBalance(ctx context.Context, page browser.Page, account string, balance decimal.Decimal) error {
	if err := a.openAccount(ctx, page, account); err != nil {
		return err
	}
	// A URL target never appears in the page heading; the row action
	// control marks the detail page as loaded instead.
	marker := accountHeading(account)
	if isAccountURL(account) {
		marker = selRowAction
	}
	if err := page.WaitVisible(ctx, marker); err != nil {
		return err
	}
	if err := page.Click(ctx, selRowAction); err != nil {
		return err
	}
	if err := page.SelectAllAndType(ctx, selPointsValue, domain.WholeYen(balance)); err != nil {
		return err
	}
	return page.Click(ctx, selPointsSubmit)
}

// Finalize closes the browser. A no-op when no write was ever performed.
func (a *CashAccount) Finalize() error {
	return a.sess.close()
}
