package catalog

import "strings"

// Row is one catalog entry: a mapping of column name to trimmed value.
//
// Keys come from the catalog header row and are not fixed by this package.
// Missing trailing columns are present with an empty value.
type Row map[string]string

// Name returns the row's "name" column, the key the catalog is indexed by.
func (r Row) Name() string { return r["name"] }

// Color returns the row's "color" column, used by the material matcher.
func (r Row) Color() string { return r["color"] }

// Parse parses catalog text into rows.
//
// The first record is the header; every following record is zipped against
// the header positionally. Records with fewer fields than the header get
// empty strings for the missing columns; extra fields are dropped. All values
// are whitespace-trimmed. Records whose fields are all empty are skipped.
//
// Supported dialect:
//   - fields separated by commas
//   - records separated by \r\n, \n or \r
//   - double-quoted fields may contain commas, quotes ("" escapes to ") and
//     record separators
//   - an unterminated quote is closed implicitly at end of input
//
// Empty input yields a nil slice, never an error.
func Parse(text string) []Row {
	records := splitRecords(text)
	if len(records) == 0 {
		return nil
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		empty := true
		for i, col := range header {
			var v string
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if v != "" {
				empty = false
			}
			row[col] = v
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	return rows
}

// splitRecords tokenizes text into records of raw (untrimmed) fields.
func splitRecords(text string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		// A record that never saw a separator and holds nothing is a
		// blank line, not a one-column record.
		if len(record) == 1 && record[0] == "" {
			record = nil
			return
		}
		records = append(records, record)
		record = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteRune(c)
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteRune(c)
		}
	}

	// Implicit close of a dangling quote, then flush the final record.
	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}

	return records
}
