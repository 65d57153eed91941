package viewer

import (
	"context"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
)

// ImportMode selects how ImportFiles merges new content into the scene.
type ImportMode string

// ImportModeAdd adds the imported objects alongside the existing scene.
const ImportModeAdd ImportMode = "add"

// ConfigEntry is one entry of the viewer's configuration state: which child
// object is active for a given variant switch.
type ConfigEntry struct {
	Variant                string `json:"variant"`
	ActiveObject           string `json:"active_object"`
	ActiveObjectInstanceID string `json:"active_object_instanceId,omitempty"`
}

// Viewer is the hosted 3D viewer collaborator.
//
// Implementations must be safe for calls from a single goroutine at a time;
// the controller serializes applies, so no stronger guarantee is required.
type Viewer interface {
	// Init performs the viewer handshake. It must resolve before any
	// other call is made.
	Init(ctx context.Context) error

	// Objects returns the current scene tree, possibly nested.
	Objects(ctx context.Context) ([]*scene.Object, error)

	// ImportFiles asks the viewer to import the given file bytes. The
	// resulting objects are observed via a later Objects call.
	ImportFiles(ctx context.Context, filename string, data []byte, mode ImportMode) error

	// ToggleVisibility shows or hides the objects with the given identities.
	ToggleVisibility(ctx context.Context, ids []string, visible bool) error

	// AddOrEditMaterial binds the material to the object. May fail per
	// object; the caller decides whether that is fatal.
	AddOrEditMaterial(ctx context.Context, objectID string, mat scene.Material) error

	// ConfigurationState returns the viewer's variant configuration.
	ConfigurationState(ctx context.Context) ([]ConfigEntry, error)

	// SetConfigurationState replaces the viewer's variant configuration
	// in one call.
	SetConfigurationState(ctx context.Context, entries []ConfigEntry) error
}
