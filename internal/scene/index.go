package scene

// Index maps object names to the objects carrying that name, in traversal
// order. Duplicates by name are preserved, not merged; a product commonly has
// several panels sharing one target name.
type Index struct {
	byName map[string][]*Object
	seen   map[string]struct{}
}

// NewIndex flattens the trees under roots and groups the objects by name.
// Unnamed objects are skipped.
func NewIndex(roots []*Object) *Index {
	ix := &Index{
		byName: make(map[string][]*Object),
		seen:   make(map[string]struct{}),
	}
	ix.Extend(roots...)
	return ix
}

// Extend folds additional trees into the index. Call it with every newly
// imported subtree so lookups keep reflecting the live scene instead of the
// initial snapshot.
//
// Objects whose identity is already indexed are skipped, so re-extending
// with an already-seen tree is a no-op. Objects without any identity are
// indexed unconditionally; the viewer gives us no way to recognize them.
func (ix *Index) Extend(roots ...*Object) {
	for _, o := range Flatten(roots) {
		if o.Name == "" {
			continue
		}
		if id := o.Identity(); id != "" {
			if _, dup := ix.seen[id]; dup {
				continue
			}
			ix.seen[id] = struct{}{}
		}
		ix.byName[o.Name] = append(ix.byName[o.Name], o)
	}
}

// Lookup returns the objects indexed under name, in traversal order.
func (ix *Index) Lookup(name string) []*Object {
	return ix.byName[name]
}

// LookupAll returns the objects for every name in names, concatenated in
// argument order. Names with no objects contribute nothing.
func (ix *Index) LookupAll(names []string) []*Object {
	var out []*Object
	for _, name := range names {
		out = append(out, ix.byName[name]...)
	}
	return out
}

// Names returns how many distinct names are indexed.
func (ix *Index) Names() int { return len(ix.byName) }
