package weights

import "sync"

// Dictionary is the append-only mapping between feature names and feature ids.
// It is shared by the decoder and the trainer, ids are never reused.
type Dictionary struct {
	mut   sync.RWMutex
	ids   map[string]uint32
	names []string
}

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{
		ids: make(map[string]uint32),
	}
}

// ID returns the id of name, registering it when it is new
func (d *Dictionary) ID(name string) uint32 {
	d.mut.RLock()
	id, ok := d.ids[name]
	d.mut.RUnlock()
	if ok {
		return id
	}
	d.mut.Lock()
	defer d.mut.Unlock()
	if id, ok := d.ids[name]; ok {
		return id
	}
	id = uint32(len(d.names))
	d.ids[name] = id
	d.names = append(d.names, name)
	return id
}

// Lookup returns the id of name without registering it
func (d *Dictionary) Lookup(name string) (uint32, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()
	id, ok := d.ids[name]
	return id, ok
}

// Name returns the name of id, or the empty string for an unknown id
func (d *Dictionary) Name(id uint32) string {
	d.mut.RLock()
	defer d.mut.RUnlock()
	if int(id) >= len(d.names) {
		return ""
	}
	return d.names[id]
}

// Len is the number of registered features
func (d *Dictionary) Len() int {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return len(d.names)
}

// Vector builds a vector from named values
func (d *Dictionary) Vector(named map[string]float64) Vector {
	var v = make(Vector, len(named))
	for name, x := range named {
		v[d.ID(name)] = x
	}
	return v
}

// Named converts v into a map keyed by feature name
func (d *Dictionary) Named(v Vector) map[string]float64 {
	var o = make(map[string]float64, len(v))
	for f, x := range v {
		o[d.Name(f)] = x
	}
	return o
}
