package catalog

// Catalog holds the parsed rows in file order plus a by-name index.
//
// Every indexed row is present in Rows; the reverse does not hold because
// rows without a name are kept in the sequence but never indexed.
type Catalog struct {
	rows   []Row
	byName map[string]Row
}

// New builds a Catalog from parsed rows.
//
// Rows without a non-empty "name" value are excluded from the index.
// Later rows overwrite earlier rows with the same name.
func New(rows []Row) *Catalog {
	c := &Catalog{
		rows:   rows,
		byName: make(map[string]Row, len(rows)),
	}
	for _, row := range rows {
		if name := row.Name(); name != "" {
			c.byName[name] = row
		}
	}
	return c
}

// Lookup returns the row indexed under name.
func (c *Catalog) Lookup(name string) (Row, bool) {
	row, ok := c.byName[name]
	return row, ok
}

// Rows returns all rows in file order, including unindexed ones.
func (c *Catalog) Rows() []Row { return c.rows }

// Len returns the number of parsed rows.
func (c *Catalog) Len() int { return len(c.rows) }
