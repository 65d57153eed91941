// Package scene defines the read-side model of the viewer's scene graph:
// objects, materials, and a name-based object index.
//
// # Objects
//
// Object mirrors what the viewer reports for a scene node. The viewer owns
// these records; this package only reads them. An object's identity can live
// in one of several fields depending on how it entered the scene, so code
// should always go through Identity rather than a specific field.
//
// # Index
//
// Index groups objects by name for target-object resolution:
//
//	ix := scene.NewIndex(roots)
//	panels := ix.Lookup("SeatPanel")
//
// The index is a snapshot of the tree it was built from. Imports add new
// objects to the live scene, so callers must feed every newly imported
// subtree back in via Extend to keep lookups current.
package scene
