package cli

import (
	"context"
	"time"

	"github.com/aretw0/pkiviz/pkg/session"
	"golang.org/x/term"
)

// DefaultResizePoll is how often the terminal size is checked.
const DefaultResizePoll = 500 * time.Millisecond

// Approximate pixel size of one terminal cell.
const (
	cellWidth  = 8
	cellHeight = 16
)

// CellsToPixels converts a terminal size to the window size the viewer lays out for.
func CellsToPixels(cols, rows int) (float64, float64) {
	return float64(cols * cellWidth), float64(rows * cellHeight)
}

// WatchTerminalSize resizes the viewer whenever the terminal on fd changes size.
func WatchTerminalSize(ctx context.Context, v *session.Viewer, fd int, every time.Duration) {
	watchSize(ctx, v, func() (int, int, error) { return term.GetSize(fd) }, every)
}

func watchSize(ctx context.Context, v *session.Viewer, size func() (int, int, error), every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	lastCols, lastRows := -1, -1
	for {
		cols, rows, err := size()
		if err == nil && cols > 0 && rows > 0 && (cols != lastCols || rows != lastRows) {
			w, h := CellsToPixels(cols, rows)
			if v.Resize(ctx, w, h) == nil {
				lastCols, lastRows = cols, rows
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
