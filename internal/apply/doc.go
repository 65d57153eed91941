// Package apply orchestrates turning a user selection into scene mutations.
//
// # Material path
//
// ApplyMaterial resolves the mapping entry and catalog row for a selection,
// hides whatever was previously active for the application (best effort),
// ensures the asset is imported via the cache, picks a material with the
// match cascade, and binds it to every target object. Per-object bind
// failures are retried once with the imported object's first material and
// otherwise skipped; only a batch with zero successes fails. The
// application's active-object record is overwritten only after success, so a
// failed apply leaves prior state untouched.
//
// # Variant path
//
// ApplyVariant edits the viewer's configuration state instead: every entry
// whose variant name is targeted by the application gets its active object
// set to the option's variant value (and its stale instance id cleared). No
// matching entries is a logged no-op, not an error.
//
// # Dispatch
//
// Apply routes to one of the two paths by checking the application name
// against the configured variant application set, case-insensitively.
//
// # Errors
//
// All failures surface to the caller as wrapped sentinels (ErrMappingNotFound,
// ErrCatalogRowNotFound, ErrNoMaterialAvailable, ErrNoTargetObjects,
// ErrApplyFailed) or errors from the collaborating packages
// (assets.ErrMissingAsset, assets.ErrImportNotFound, fetch.StatusError).
// Best-effort steps log at Warn and never escalate.
package apply
