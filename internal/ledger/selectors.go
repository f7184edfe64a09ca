package ledger

import "github.com/zansync/zansync/internal/browser"

const (
	loginURL    = "https://moneyforward.com/login"
	accountsURL = "https://moneyforward.com/accounts"

	// option value of the 暗号資産 (crypto/other asset) category in the
	// manual-entry form's subclass dropdown.
	assetSubclassCrypto = "66"
)

var (
	selSignInLink  = browser.Css("a.link-btn-reg")
	selEmailInput  = browser.Css(`[id="mfid_user[email]"]`)
	selPassword    = browser.Css(`[id="mfid_user[password]"]`)
	selSubmit      = browser.Css("#submitto")
	selOTPMarker   = browser.XPath(`//body[contains(., 'One-time passcode')]`)
	selOTPInput    = browser.Css("#otp_attempt")
	selPostLogin   = browser.Css(".right-nav")
	selAddManual   = browser.XPath(`//a[contains(., '手入力で資産を追加')]`)
	assetTableRows = browser.XPath(`//table[@id="TABLE_1"]//tr`)

	selModalCategory   = browser.Css("div.modal.in #user_asset_det_asset_subclass_id")
	selModalName       = browser.Css("div.modal.in #user_asset_det_name")
	selModalValue      = browser.Css("div.modal.in #user_asset_det_value")
	selModalValueNamed = browser.Css(`div.modal.in input[name="user_asset_det[value]"]`)
	selModalCost       = browser.Css("div.modal.in #user_asset_det_entried_price")
	selModalSubmit     = browser.Css(`div.modal.in input[value="この内容で登録する"]`)

	selBalanceHistory = browser.XPath(`//h1[contains(., '残高推移')]`)
	selPayEditButton  = browser.Css(".heading-small > .btn-success.btn")
	selRolloverValue  = browser.Css("#rollover_info_value")
	selPaySubmit      = browser.Css(".controls > .btn-success.btn")

	selRowAction    = browser.Css(".btn-asset-action")
	selPointsValue  = browser.Css("#portfolio_det_po #user_asset_det_value")
	selPointsSubmit = browser.Css("#portfolio_det_po .controls > .btn-success.btn")
)

// manualAccountLink matches the manual-account link whose visible text
// contains the account's display name.
func manualAccountLink(account string) browser.Selector {
	return browser.XPath(`//section[@class='manual_accounts']//a[contains(., '%s')]`, account)
}

// rowActionControl is the edit affordance of the first asset row whose
// text contains name.
func rowActionControl(name string) browser.Selector {
	return browser.XPath(`(//table[@id="TABLE_1"]//tr[contains(., "%s")])[1]//*[contains(@class, 'btn-asset-action')]`, name)
}

// accountHeading confirms an account detail page by its h1 text.
func accountHeading(account string) browser.Selector {
	return browser.XPath(`//h1[contains(., '%s')]`, account)
}
