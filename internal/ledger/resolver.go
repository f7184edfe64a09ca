package ledger

import (
	"context"
	"strings"

	"github.com/zansync/zansync/internal/browser"
)

// isAccountURL reports whether an account target is a direct page URL
// rather than a display name.
func isAccountURL(account string) bool {
	return strings.HasPrefix(account, "https://")
}

// rowHandle is the outcome of row resolution: either the edit control of
// an existing asset row, or the add-manual affordance for a new one.
type rowHandle struct {
	exists bool
	action browser.Selector
}

// openAccount brings the page to the target account's detail view. The
// account is either a direct URL or a display name matched (substring)
// against the manual-account links on the accounts listing.
func (a *CashAccount) openAccount(ctx context.Context, page browser.Page, account string) error {
	if isAccountURL(account) {
		return page.Navigate(ctx, account)
	}

	if err := page.Navigate(ctx, accountsURL); err != nil {
		return err
	}
	link := manualAccountLink(account)
	if err := page.Click(ctx, link); err != nil {
		if isElementTimeout(err) {
			return &AccountNotFoundError{Account: account, Cause: err}
		}
		return err
	}
	return nil
}

// resolveRow decides between update and create for one asset. The first
// row whose rendered text contains name wins; when several rows match, no
// disambiguation is attempted. Waiting for the add-manual affordance
// doubles as the signal that the detail page finished loading.
func (a *CashAccount) resolveRow(ctx context.Context, page browser.Page, name string) (rowHandle, error) {
	if err := page.WaitVisible(ctx, selAddManual); err != nil {
		return rowHandle{}, err
	}

	found, err := page.FindRow(ctx, browser.RowQuery{Table: assetTableRows, Contains: name})
	if err != nil {
		return rowHandle{}, err
	}
	if found {
		return rowHandle{exists: true, action: rowActionControl(name)}, nil
	}
	return rowHandle{action: selAddManual}, nil
}
