package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zansync/zansync/internal/browser"
)

// recorder captures forensic page state when an engine operation fails:
// an HTML dump and a full-page screenshot, suffixed with an in-process
// counter so consecutive failures in one run do not overwrite each other.
// Capture is best-effort and must never mask the failure that caused it.
type recorder struct {
	enabled bool
	dir     string
	logger  *zap.Logger
	count   int
}

func (r *recorder) capture(ctx context.Context, page browser.Page) {
	if r == nil || !r.enabled || page == nil {
		return
	}

	n := r.count
	r.count++

	dir := r.dir
	if dir == "" {
		dir, _ = os.Getwd()
	}

	if url, err := page.URL(ctx); err == nil {
		r.logger.Info("capturing failure state", zap.String("url", url))
	}

	htmlPath := filepath.Join(dir, fmt.Sprintf("debug_%d.html", n))
	html, err := page.Content(ctx)
	if err != nil {
		r.logger.Warn("page content unavailable", zap.Error(err))
		html = "null"
	}
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		r.logger.Warn("failed to write html dump", zap.Error(err))
	}

	pngPath := filepath.Join(dir, fmt.Sprintf("debug_%d.png", n))
	shot, err := page.Screenshot(ctx)
	if err != nil {
		r.logger.Warn("screenshot unavailable", zap.Error(err))
		return
	}
	if err := os.WriteFile(pngPath, shot, 0o644); err != nil {
		r.logger.Warn("failed to write screenshot", zap.Error(err))
		return
	}

	r.logger.Info("failure state captured",
		zap.String("html", htmlPath),
		zap.String("screenshot", pngPath))
}
