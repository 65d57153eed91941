// Package fetch provides the fetch-by-URL transport primitive used for
// catalog text, 3D asset blobs and preview images.
//
// A non-success HTTP status is surfaced as a *StatusError so callers can
// distinguish transport failures from the absence of an asset reference:
//
//	data, err := client.Get(ctx, url)
//	var se *fetch.StatusError
//	if errors.As(err, &se) {
//	    log.Warn("fetch failed", zap.Int("status", se.Status))
//	}
package fetch
