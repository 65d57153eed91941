// Package assets resolves catalog rows to 3D asset URLs and memoizes both
// the fetched bytes and the viewer-side imported object per URL.
//
// # Guarantees
//
// For any distinct resolved URL, at most one network fetch and at most one
// viewer import happen for the process lifetime. Concurrent callers collapse
// onto a single in-flight import (singleflight); later callers get the cached
// object. The cache is never invalidated within a session.
//
// # Import detection
//
// The viewer's ImportFiles call returns nothing, so the Cache snapshots the
// scene's object identities before importing and diffs afterwards to find the
// newly created subtree. A missing diff means the viewer silently failed and
// surfaces as ErrImportNotFound.
//
// Example usage:
//
//	cache := assets.NewCache(settings.AssetBasePath, client, v, logger)
//	cache.OnImport(func(o *scene.Object) { index.Extend(o) })
//
//	url, err := cache.ResolveURL(row)
//	obj, err := cache.GetOrImport(ctx, url, row.Name())
package assets
