// Package browser abstracts the automated Chrome session behind small
// interfaces so the ledger engine can be exercised against a fake page.
package browser

import (
	"context"
	"fmt"
)

// Selector addresses an element either by CSS query or by XPath.
type Selector struct {
	Query string
	XPath bool
}

// Css builds a CSS selector.
func Css(q string) Selector { return Selector{Query: q} }

// XPath builds an XPath selector.
func XPath(format string, args ...any) Selector {
	return Selector{Query: fmt.Sprintf(format, args...), XPath: true}
}

func (s Selector) String() string { return s.Query }

// RowQuery is the locator for a table row: it matches the first row of
// Table whose rendered text contains the Contains string, case-sensitive.
// No disambiguation is attempted when several rows match.
type RowQuery struct {
	Table    Selector
	Contains string
}

// Page is one browser tab. Every wait is bounded by the page's configured
// wait timeout and fails with *ElementTimeoutError when it expires.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel Selector) error
	Click(ctx context.Context, sel Selector) error
	Type(ctx context.Context, sel Selector, text string) error
	// ClearValue empties an input's current value without submitting.
	ClearValue(ctx context.Context, sel Selector) error
	// SelectOption picks an option of a <select> element by value.
	SelectOption(ctx context.Context, sel Selector, value string) error
	// SelectAllAndType replaces an input's selected text wholesale,
	// the triple-click-then-type gesture.
	SelectAllAndType(ctx context.Context, sel Selector, text string) error
	// FindRow reports whether any row matches q. It does not wait.
	FindRow(ctx context.Context, q RowQuery) (bool, error)
	Content(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	URL(ctx context.Context) (string, error)
	Close() error
}

// Browser owns the underlying Chrome process and hands out pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}
