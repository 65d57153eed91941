package apply

import "errors"

var (
	// ErrMappingNotFound indicates the application or option label is
	// absent from the mapping table.
	ErrMappingNotFound = errors.New("selection not present in mapping")

	// ErrCatalogRowNotFound indicates the mapped material name does not
	// exist in the catalog index.
	ErrCatalogRowNotFound = errors.New("material not found in catalog")

	// ErrNoMaterialAvailable indicates the imported object exposes no
	// material slots at all.
	ErrNoMaterialAvailable = errors.New("imported object has no materials")

	// ErrNoTargetObjects indicates the application maps to an empty
	// object-name list.
	ErrNoTargetObjects = errors.New("no target object names configured")

	// ErrApplyFailed indicates every per-object bind attempt in the batch
	// failed, including fallback retries.
	ErrApplyFailed = errors.New("no target object accepted the material")
)
