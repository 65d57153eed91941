package assets

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
)

// Prefetch warms the blob cache for every catalog row with a resolvable
// asset, fetching up to limit files concurrently. Rows without an asset
// reference are skipped; fetch failures are logged and do not abort the
// warm-up. The per-URL fetch-once guarantee holds, so later GetOrImport
// calls reuse these bytes.
func (c *Cache) Prefetch(ctx context.Context, cat *catalog.Catalog, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, row := range cat.Rows() {
		assetURL, err := c.ResolveURL(row)
		if err != nil {
			if !errors.Is(err, ErrMissingAsset) {
				return err
			}
			continue
		}
		g.Go(func() error {
			if _, err := c.blob(ctx, assetURL); err != nil {
				c.log.Warn("prefetch failed",
					zap.String("url", assetURL),
					zap.Error(err))
			}
			return nil
		})
	}

	return g.Wait()
}
