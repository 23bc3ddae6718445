package dom

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

// indexThreshold is the attribute count past which lookups go through a map
// instead of a linear scan.
const indexThreshold = 16

// Attributes is an insertion ordered attribute container. A name can only be
// stored once; the first value written for a name wins.
type Attributes struct {
	list  []Attribute
	index map[string]int
}

// NewAttributes returns an empty attribute container.
func NewAttributes() *Attributes {
	return &Attributes{}
}

func (a *Attributes) find(name string) int {
	if a.index != nil {
		if i, ok := a.index[name]; ok {
			return i
		}
		return -1
	}
	for i := range a.list {
		if a.list[i].Name == name {
			return i
		}
	}
	return -1
}

// Put stores the attribute unless an attribute with the same name is already
// present. It reports whether the attribute was stored.
func (a *Attributes) Put(name, value string) bool {
	if a.find(name) != -1 {
		return false
	}
	a.list = append(a.list, Attribute{Name: name, Value: value})
	if a.index != nil {
		a.index[name] = len(a.list) - 1
	} else if len(a.list) > indexThreshold {
		a.index = make(map[string]int, len(a.list))
		for i, attr := range a.list {
			a.index[attr.Name] = i
		}
	}
	return true
}

// Get returns the value of the named attribute.
func (a *Attributes) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	i := a.find(name)
	if i == -1 {
		return "", false
	}
	return a.list[i].Value, true
}

// Has reports whether the named attribute is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// All returns the attributes in insertion order. The returned slice must not
// be modified.
func (a *Attributes) All() []Attribute {
	if a == nil {
		return nil
	}
	return a.list
}

// Clone returns an independent copy.
func (a *Attributes) Clone() *Attributes {
	c := NewAttributes()
	if a == nil {
		return c
	}
	for _, attr := range a.list {
		c.Put(attr.Name, attr.Value)
	}
	return c
}

// Equal reports whether both containers hold the same name/value pairs,
// regardless of order.
func (a *Attributes) Equal(b *Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, attr := range a.All() {
		v, ok := b.Get(attr.Name)
		if !ok || v != attr.Value {
			return false
		}
	}
	return true
}
