// Package catalog loads the materials catalog from its tabular text source
// and indexes rows by name.
//
// # Rows
//
// A Row is a column-name to value mapping with trimmed string values. Column
// names are defined by the catalog file itself; the rest of the application
// only relies on a handful of well-known columns ("name", "download_link",
// "_3d_file", "color", "preview_image").
//
// # Parsing
//
// Parse is deliberately tolerant: it accepts the CSV dialects that real
// exported catalogs show up in, including quoted fields with embedded commas
// and newlines, doubled-quote escapes, mixed line endings and truncated
// trailing fields. A file that ends inside an open quote is treated as if the
// quote had been closed at end of input.
//
// # Indexing
//
// New builds a Catalog from parsed rows. Rows without a non-empty "name" are
// not indexed; when two rows share a name the later one wins, matching how
// catalog owners fix entries by appending corrected rows.
//
// Example usage:
//
//	text, _ := client.GetString(ctx, settings.CatalogURL)
//	cat := catalog.New(catalog.Parse(text))
//
//	row, ok := cat.Lookup("Corde4_pumpkin")
//	if ok {
//	    fmt.Println(row["download_link"])
//	}
package catalog
