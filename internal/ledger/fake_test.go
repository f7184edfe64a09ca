package ledger

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/zansync/zansync/internal/browser"
)

// fakePage is an in-memory automation surface: it records every action
// and serves a scripted row list, so engine semantics are testable
// without Chrome. Selectors listed in missing never become visible and
// fail with the same timeout error the real page produces.
type fakePage struct {
	rows    []string
	missing map[string]bool
	calls   []fakeCall
	closed  bool
}

type fakeCall struct {
	op   string
	sel  string
	text string
}

func newFakePage() *fakePage {
	return &fakePage{missing: map[string]bool{
		// default: no one-time-passcode challenge
		selOTPMarker.Query: true,
	}}
}

func (p *fakePage) record(op string, sel browser.Selector, text string) error {
	if p.missing[sel.Query] {
		return &browser.ElementTimeoutError{Selector: sel, Cause: context.DeadlineExceeded}
	}
	p.calls = append(p.calls, fakeCall{op: op, sel: sel.Query, text: text})
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	return p.record("navigate", browser.Selector{Query: url}, "")
}

func (p *fakePage) WaitVisible(ctx context.Context, sel browser.Selector) error {
	return p.record("wait", sel, "")
}

func (p *fakePage) Click(ctx context.Context, sel browser.Selector) error {
	return p.record("click", sel, "")
}

func (p *fakePage) Type(ctx context.Context, sel browser.Selector, text string) error {
	return p.record("type", sel, text)
}

func (p *fakePage) ClearValue(ctx context.Context, sel browser.Selector) error {
	return p.record("clear", sel, "")
}

func (p *fakePage) SelectOption(ctx context.Context, sel browser.Selector, value string) error {
	return p.record("select", sel, value)
}

func (p *fakePage) SelectAllAndType(ctx context.Context, sel browser.Selector, text string) error {
	return p.record("selectalltype", sel, text)
}

func (p *fakePage) FindRow(ctx context.Context, q browser.RowQuery) (bool, error) {
	for _, row := range p.rows {
		if strings.Contains(row, q.Contains) {
			return true, nil
		}
	}
	return false, nil
}

func (p *fakePage) Content(ctx context.Context) (string, error) {
	return "<html><body>fake</body></html>", nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	return "https://moneyforward.com/fake", nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// helpers over the recorded call log

func (p *fakePage) countOp(op, sel string) int {
	n := 0
	for _, c := range p.calls {
		if c.op == op && c.sel == sel {
			n++
		}
	}
	return n
}

func (p *fakePage) typed(sel string) []string {
	var out []string
	for _, c := range p.calls {
		if (c.op == "type" || c.op == "selectalltype") && c.sel == sel {
			out = append(out, c.text)
		}
	}
	return out
}

func (p *fakePage) selected(sel string) []string {
	var out []string
	for _, c := range p.calls {
		if c.op == "select" && c.sel == sel {
			out = append(out, c.text)
		}
	}
	return out
}

// fakeBrowser hands out pages stamped from a template and keeps every
// page it created for later assertions.
type fakeBrowser struct {
	template func() *fakePage
	pages    []*fakePage
	launches int
	closed   bool
}

func newFakeBrowser(template func() *fakePage) *fakeBrowser {
	if template == nil {
		template = newFakePage
	}
	return &fakeBrowser{template: template}
}

func (b *fakeBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	p := b.template()
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBrowser) launcher() launcher {
	return func(ctx context.Context, opts browser.Options) (browser.Browser, error) {
		b.launches++
		return b, nil
	}
}

// failingLauncher never launches; used to prove Finalize touches nothing.
func failingLauncher(ctx context.Context, opts browser.Options) (browser.Browser, error) {
	return nil, errors.New("launcher must not be called")
}

func testConfig() Config {
	return Config{
		Email:    "user@example.com",
		Password: "hunter2",
	}
}
