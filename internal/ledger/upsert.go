package ledger

import (
	"context"

	"github.com/zansync/zansync/internal/browser"
	"github.com/zansync/zansync/internal/domain"
)

// apply drives the manual-entry form for one asset. Create path: category
// plus name before the common fields. Update path: the same form opens
// pre-populated from the row's edit control. Nothing is committed until
// the submit control is clicked, so a mid-form failure leaves no partial
// write on the ledger.
func (a *CashAccount) apply(ctx context.Context, page browser.Page, h rowHandle, asset domain.Asset) error {
	if err := page.Click(ctx, h.action); err != nil {
		return err
	}

	if !h.exists {
		if err := page.WaitVisible(ctx, selModalCategory); err != nil {
			return err
		}
		if err := page.SelectOption(ctx, selModalCategory, assetSubclassCrypto); err != nil {
			return err
		}
		if err := page.Type(ctx, selModalName, asset.Name); err != nil {
			return err
		}
	}

	if err := page.WaitVisible(ctx, selModalValue); err != nil {
		return err
	}
	if err := page.ClearValue(ctx, selModalValueNamed); err != nil {
		return err
	}
	if err := page.Type(ctx, selModalValue, domain.WholeYen(asset.Value)); err != nil {
		return err
	}
	if asset.Bought != nil {
		if err := page.Type(ctx, selModalCost, domain.WholeYen(*asset.Bought)); err != nil {
			return err
		}
	}

	return page.Click(ctx, selModalSubmit)
}
