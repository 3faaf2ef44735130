package weights

import "sort"
import "strconv"
import "strings"

import "github.com/pkg/errors"

// String encodes v as space separated "name=value" pairs, sorted by name.
// This is the wire format of the downpour worker protocol.
func String(v Vector, d *Dictionary) string {
	var parts = make([]string, 0, len(v))
	for f, x := range v {
		parts = append(parts, d.Name(f)+"="+strconv.FormatFloat(x, 'g', -1, 64))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// ParseString decodes "name=value" pairs into a new vector. The value starts
// after the last '=' so names may contain '='.
func ParseString(s string, d *Dictionary) (Vector, error) {
	var v = New()
	for _, tok := range strings.Fields(s) {
		p := strings.LastIndexByte(tok, '=')
		if p <= 0 {
			return nil, errors.Wrapf(ErrMalformed, "kv token %q", tok)
		}
		x, err := strconv.ParseFloat(tok[p+1:], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "kv token %q", tok)
		}
		v[d.ID(tok[:p])] = x
	}
	return v, nil
}
