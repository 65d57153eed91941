package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaterialRef is the catalog intent behind one option label: the catalog row
// name to resolve and the color variant to match against material slots.
type MaterialRef struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Mapping is the static lookup table relating user selections to catalog
// rows and scene objects. It is read-only for this application.
type Mapping struct {
	// Materials maps application name -> option label -> catalog intent.
	Materials map[string]map[string]MaterialRef `json:"materials"`

	// ObjectNames maps application name -> the scene object names the
	// selection targets. For variant applications these are the variant
	// switch names instead.
	ObjectNames map[string][]string `json:"object_names"`

	// VariantApplications lists the applications realized by switching a
	// configuration-state entry rather than rebinding a material. Matched
	// case-insensitively.
	VariantApplications []string `json:"variant_applications,omitempty"`
}

// Material resolves the catalog intent for an application/option pair.
func (m *Mapping) Material(application, option string) (MaterialRef, bool) {
	options, ok := m.Materials[application]
	if !ok {
		return MaterialRef{}, false
	}
	ref, ok := options[option]
	return ref, ok
}

// Applications returns all application names with at least one option.
func (m *Mapping) Applications() []string {
	apps := make([]string, 0, len(m.Materials))
	for app := range m.Materials {
		apps = append(apps, app)
	}
	return apps
}

// Options returns the option labels configured for an application.
func (m *Mapping) Options(application string) []string {
	options := make([]string, 0, len(m.Materials[application]))
	for label := range m.Materials[application] {
		options = append(options, label)
	}
	return options
}

// IsVariant reports whether the application is variant-style, by
// case-insensitive membership in VariantApplications.
func (m *Mapping) IsVariant(application string) bool {
	for _, v := range m.VariantApplications {
		if strings.EqualFold(v, application) {
			return true
		}
	}
	return false
}

// Settings holds all configuration options.
type Settings struct {
	// ViewerURL is the websocket address of the viewer bridge.
	ViewerURL string `json:"viewer_url"`

	// CatalogURL is where the materials catalog text is fetched from.
	CatalogURL string `json:"catalog_url"`

	// AssetBasePath prefixes catalog file references that carry no scheme
	// and are not explicit relative paths.
	AssetBasePath string `json:"asset_base_path"`

	// DebounceMS is the trailing-edge selection debounce window in
	// milliseconds.
	DebounceMS int `json:"debounce_ms"`

	// APIAddr is the listen address of the debug/control HTTP API.
	// Empty disables the API server.
	APIAddr string `json:"api_addr,omitempty"`

	// LogLevel: "debug", "info", "warn", "error".
	LogLevel string `json:"log_level"`

	// PreviewMaxSize is the bounding box (pixels) for catalog preview
	// thumbnails.
	PreviewMaxSize int `json:"preview_max_size"`

	// PrefetchAssets warms the blob cache for every catalog row with a
	// resolvable asset before the first selection.
	PrefetchAssets bool `json:"prefetch_assets"`

	// Mapping is the selection mapping table.
	Mapping Mapping `json:"mapping"`
}

// Debounce returns the debounce window as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// DefaultSettings returns settings with default values. The mapping table
// has no default; it always comes from the configuration owner.
func DefaultSettings() *Settings {
	return &Settings{
		ViewerURL:      "ws://localhost:9000/viewer",
		AssetBasePath:  "/assets/",
		DebounceMS:     300,
		LogLevel:       "info",
		PreviewMaxSize: 256,
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
