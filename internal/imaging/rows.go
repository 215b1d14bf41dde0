package imaging

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelRows runs fn across row bands of an image of height h, one band per
// available CPU. The first error cancels the bands that have not started.
func ParallelRows(ctx context.Context, h int, fn func(startY, endY int) error) error {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > h {
		numWorkers = h
	}
	if numWorkers < 1 {
		return nil
	}
	rowsPerWorker := (h + numWorkers - 1) / numWorkers

	g, ctx := errgroup.WithContext(ctx)
	for startY := 0; startY < h; startY += rowsPerWorker {
		endY := startY + rowsPerWorker
		if endY > h {
			endY = h
		}
		sy, ey := startY, endY
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(sy, ey)
		})
	}
	return g.Wait()
}
