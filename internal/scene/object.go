package scene

// Material is a viewer-side material definition. The configurator treats it
// as read-only; it only ever selects which material to bind to an object.
type Material struct {
	// Name is the material's display name in the viewer.
	Name string `json:"name"`

	// Color is an optional color tag. Catalogs commonly encode the intended
	// color variant here (e.g. "Corde4_pumpkin").
	Color string `json:"color,omitempty"`
}

// Object is one node of the viewer's scene tree.
//
// Exactly which identity field is populated depends on the object's origin:
// instanced library objects carry InstanceID, imported files carry ID, and
// some viewers report a bare UUID. Identity abstracts over that.
type Object struct {
	ID         string `json:"id,omitempty"`
	InstanceID string `json:"instanceId,omitempty"`
	UUID       string `json:"uuid,omitempty"`

	// Name is the display name, empty for anonymous nodes.
	Name string `json:"name,omitempty"`

	// Children are nested objects, pre-order below this one.
	Children []*Object `json:"children,omitempty"`

	// Materials are the material slots the viewer exposes on this object.
	Materials []Material `json:"materials,omitempty"`
}

// Identity returns the first populated identity field, or "" if the viewer
// reported none.
func (o *Object) Identity() string {
	switch {
	case o.InstanceID != "":
		return o.InstanceID
	case o.ID != "":
		return o.ID
	default:
		return o.UUID
	}
}

// Flatten returns the trees rooted at roots as a single pre-order sequence,
// parent before children. Nil entries are skipped; children are only
// descended into when the list is non-empty.
func Flatten(roots []*Object) []*Object {
	var out []*Object
	var walk func(o *Object)
	walk = func(o *Object) {
		if o == nil {
			return
		}
		out = append(out, o)
		for _, child := range o.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

// Identities returns the set of identities present in the trees under roots.
// Objects without any identity field are not represented.
func Identities(roots []*Object) map[string]struct{} {
	set := make(map[string]struct{})
	for _, o := range Flatten(roots) {
		if id := o.Identity(); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
