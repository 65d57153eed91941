// Package config provides configuration management for the configurator.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - The selection mapping table (applications, options, object names)
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 300ms selection debounce
//	// assets resolved under /assets/
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # The mapping table
//
// Mapping is supplied by the configuration owner and treated as static,
// pre-validated data. It relates a user-facing application (a configurable
// feature of the product) and an option label (the dropdown value) to a
// catalog material reference, and each application to the scene object names
// the selection targets:
//
//	ref, ok := settings.Mapping.Material("Seat", "Pumpkin")
//	names := settings.Mapping.ObjectNames["Seat"]
//
// Applications listed in VariantApplications switch a configuration-state
// entry instead of rebinding a material.
package config
