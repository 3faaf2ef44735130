package learning

import "strings"

import "github.com/neurlang/dtrain/weights"

// Groups are the feature groups that can share one learning rate. A feature
// belongs to group G when its name starts with "G:" or "G_", e.g. rule ids
// "R:..", rule bigrams "RB:.." and "Shape_..".
var Groups = []string{"R", "RB", "Shape"}

// Rates is the table of learning rate multipliers. An explicit feature rate
// wins over its group rate, features without either use 1.
type Rates struct {
	dict     *weights.Dictionary
	features weights.Vector
	groups   map[string]float64

	savedFeatures weights.Vector
	savedGroups   map[string]float64
}

// NewRates creates an empty rate table
func NewRates(dict *weights.Dictionary) *Rates {
	return &Rates{
		dict:          dict,
		features:      weights.New(),
		groups:        make(map[string]float64),
		savedFeatures: weights.New(),
		savedGroups:   make(map[string]float64),
	}
}

// IsGroup reports whether name is a known feature group
func IsGroup(name string) bool {
	for _, g := range Groups {
		if g == name {
			return true
		}
	}
	return false
}

func group(name string) string {
	var best string
	for _, g := range Groups {
		if len(g) > len(best) && (strings.HasPrefix(name, g+":") || strings.HasPrefix(name, g+"_")) {
			best = g
		}
	}
	return best
}

// Set sets the rate of a feature or of a whole group
func (r *Rates) Set(name string, rate float64) {
	if IsGroup(name) {
		r.groups[name] = rate
		return
	}
	r.features[r.dict.ID(name)] = rate
}

// Load sets the rates of all features in v
func (r *Rates) Load(v weights.Vector) {
	for f, x := range v {
		r.features[f] = x
	}
}

// Save makes the current table the one Reset returns to
func (r *Rates) Save() {
	r.savedFeatures = r.features.Clone()
	r.savedGroups = make(map[string]float64, len(r.groups))
	for g, x := range r.groups {
		r.savedGroups[g] = x
	}
}

// Reset restores the table saved last
func (r *Rates) Reset() {
	r.features = r.savedFeatures.Clone()
	r.groups = make(map[string]float64, len(r.savedGroups))
	for g, x := range r.savedGroups {
		r.groups[g] = x
	}
}

// Restore restores the saved rate of one feature or group
func (r *Rates) Restore(name string) {
	if IsGroup(name) {
		if x, ok := r.savedGroups[name]; ok {
			r.groups[name] = x
		} else {
			delete(r.groups, name)
		}
		return
	}
	f, ok := r.dict.Lookup(name)
	if !ok {
		return
	}
	if x, ok := r.savedFeatures[f]; ok {
		r.features[f] = x
	} else {
		delete(r.features, f)
	}
}

// Rate returns the multiplier of feature f
func (r *Rates) Rate(f uint32) float64 {
	if r == nil {
		return 1
	}
	if x, ok := r.features[f]; ok {
		return x
	}
	if x, ok := r.groups[group(r.dict.Name(f))]; ok {
		return x
	}
	return 1
}

// Lookup returns the rate set for a feature or group name
func (r *Rates) Lookup(name string) (float64, bool) {
	if IsGroup(name) {
		x, ok := r.groups[name]
		return x, ok
	}
	f, ok := r.dict.Lookup(name)
	if !ok {
		return 0, false
	}
	x, ok := r.features[f]
	return x, ok
}

// Scale returns d with every entry multiplied by its rate, d itself for a nil table
func (r *Rates) Scale(d weights.Vector) weights.Vector {
	if r == nil {
		return d
	}
	var o = make(weights.Vector, len(d))
	for f, x := range d {
		o[f] = x * r.Rate(f)
	}
	return o
}
