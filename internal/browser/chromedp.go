package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// chromeBrowser drives a real Chrome process over CDP. The first tab is a
// hidden anchor that keeps the process alive; pages handed to callers are
// always secondary tabs, so closing any of them never tears down Chrome.
type chromeBrowser struct {
	opts        Options
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu         sync.Mutex
	anchorCtx  context.Context
	anchorStop context.CancelFunc
}

// Launch prepares a Chrome allocator with the given options. The process
// itself starts lazily on the first NewPage call.
func Launch(ctx context.Context, opts Options) (Browser, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.UserAgent(desktopUserAgent),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.Flag("no-zygote", true),
		chromedp.NoFirstRun,
		chromedp.DisableGPU,
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox, chromedp.Flag("disable-setuid-sandbox", true))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	return &chromeBrowser{opts: opts, allocCtx: allocCtx, allocCancel: cancel}, nil
}

func (b *chromeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.anchorCtx == nil {
		anchorCtx, anchorStop := chromedp.NewContext(b.allocCtx)
		if err := chromedp.Run(anchorCtx); err != nil {
			anchorStop()
			return nil, errors.Wrap(err, "launch chrome")
		}
		b.anchorCtx = anchorCtx
		b.anchorStop = anchorStop
	}

	tabCtx, tabStop := chromedp.NewContext(b.anchorCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabStop()
		return nil, errors.Wrap(err, "open page")
	}

	// The sync flows never expect a JS dialog; accept whatever pops up so
	// a stray confirm cannot stall an element wait until its timeout.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*cdppage.EventJavascriptDialogOpening); ok {
			go func() {
				_ = chromedp.Run(tabCtx, cdppage.HandleJavaScriptDialog(true))
			}()
		}
	})

	return &chromePage{ctx: tabCtx, stop: tabStop, opts: b.opts}, nil
}

func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.anchorStop != nil {
		b.anchorStop()
		b.anchorStop = nil
	}
	b.allocCancel()
	return nil
}

type chromePage struct {
	ctx  context.Context
	stop context.CancelFunc
	opts Options
}

// run executes actions against the tab, bounded by the wait timeout and by
// the caller's context. A deadline expiry surfaces as *ElementTimeoutError.
func (p *chromePage) run(ctx context.Context, sel Selector, acts ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(p.ctx, p.opts.waitTimeout())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(tctx, acts...); err != nil {
		// A caller deadline cancels tctx, so the run error alone cannot
		// distinguish a timeout from a plain cancellation.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &ElementTimeoutError{Selector: sel, Cause: err}
		}
		return err
	}
	if p.opts.SlowMo > 0 {
		time.Sleep(p.opts.SlowMo)
	}
	return nil
}

func by(sel Selector) chromedp.QueryOption {
	if sel.XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, Selector{Query: url}, chromedp.Navigate(url))
}

func (p *chromePage) WaitVisible(ctx context.Context, sel Selector) error {
	return p.run(ctx, sel, chromedp.WaitVisible(sel.Query, by(sel)))
}

func (p *chromePage) Click(ctx context.Context, sel Selector) error {
	return p.run(ctx, sel, chromedp.Click(sel.Query, by(sel), chromedp.NodeVisible))
}

func (p *chromePage) Type(ctx context.Context, sel Selector, text string) error {
	return p.run(ctx, sel, chromedp.SendKeys(sel.Query, text, by(sel), chromedp.NodeVisible))
}

func (p *chromePage) ClearValue(ctx context.Context, sel Selector) error {
	return p.run(ctx, sel, chromedp.SetValue(sel.Query, "", by(sel)))
}

func (p *chromePage) SelectOption(ctx context.Context, sel Selector, value string) error {
	return p.run(ctx, sel, chromedp.SetValue(sel.Query, value, by(sel)))
}

func (p *chromePage) SelectAllAndType(ctx context.Context, sel Selector, text string) error {
	if sel.XPath {
		return p.run(ctx, sel,
			chromedp.SetValue(sel.Query, "", by(sel)),
			chromedp.SendKeys(sel.Query, text, by(sel)))
	}
	selectAll := fmt.Sprintf("document.querySelector(%q).select()", sel.Query)
	return p.run(ctx, sel,
		chromedp.WaitVisible(sel.Query, chromedp.ByQuery),
		chromedp.Evaluate(selectAll, nil),
		chromedp.SendKeys(sel.Query, text, chromedp.ByQuery))
}

func (p *chromePage) FindRow(ctx context.Context, q RowQuery) (bool, error) {
	xp := fmt.Sprintf("%s[contains(., %q)]", q.Table.Query, q.Contains)
	var ids []cdp.NodeID
	err := p.run(ctx, Selector{Query: xp, XPath: true},
		chromedp.NodeIDs(xp, &ids, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, Css("html"), chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, Css("body"), chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var loc string
	err := p.run(ctx, Css("body"), chromedp.Location(&loc))
	return loc, err
}

func (p *chromePage) Close() error {
	p.stop()
	return nil
}
