package decoder

import "bufio"
import "io"
import "os"
import "sort"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/weights"

// Names of the features the lexicon decoder fires on its own
const (
	FeatureWordPenalty = "WordPenalty"
	FeaturePassThrough = "PassThrough"
	RulePrefix         = "R:"
)

// ErrRule is returned for malformed lexicon lines
var ErrRule = errors.New("malformed lexicon rule")

type option struct {
	target   []string
	features weights.Vector
}

// Lexicon is a monotone word-by-word decoder. Every source word is replaced
// by one of its lexicon entries, unknown words pass through unchanged.
// Each used entry fires its own features, a rule id feature "R:src|tgt",
// and WordPenalty = -1 per output word.
type Lexicon struct {
	dict    *weights.Dictionary
	table   map[string][]option
	weights []float64

	wordPenalty, passThrough uint32
}

// NewLexicon creates an empty lexicon decoder registering its features in dict
func NewLexicon(dict *weights.Dictionary) *Lexicon {
	return &Lexicon{
		dict:        dict,
		table:       make(map[string][]option),
		wordPenalty: dict.ID(FeatureWordPenalty),
		passThrough: dict.ID(FeaturePassThrough),
	}
}

// AddRule adds the translation of the source word src into the target words tgt
func (l *Lexicon) AddRule(src, tgt string, features weights.Vector) {
	var target = strings.Fields(tgt)
	var f = features.Clone()
	f[l.dict.ID(RulePrefix+src+"|"+strings.Join(target, "_"))] += 1
	f[l.wordPenalty] -= float64(len(target))
	l.table[src] = append(l.table[src], option{target: target, features: f})
}

// Load reads rules "src ||| tgt ||| Name=value Name2=value" from r
func (l *Lexicon) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var n int
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		parts := strings.Split(line, " ||| ")
		if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
			return errors.Wrapf(ErrRule, "line %d", n)
		}
		var f = weights.New()
		if len(parts) == 3 {
			var err error
			if f, err = weights.ParseString(parts[2], l.dict); err != nil {
				return errors.Wrapf(err, "line %d", n)
			}
		}
		l.AddRule(strings.TrimSpace(parts[0]), parts[1], f)
	}
	return scanner.Err()
}

// LoadLexicon reads the named lexicon file into a new decoder
func LoadLexicon(name string, dict *weights.Dictionary) (*Lexicon, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open lexicon")
	}
	defer file.Close()
	l := NewLexicon(dict)
	if err := l.Load(file); err != nil {
		return nil, errors.Wrapf(err, "load lexicon %s", name)
	}
	return l, nil
}

// SetWeights copies dense into the decoder
func (l *Lexicon) SetWeights(dense []float64) {
	l.weights = append(l.weights[:0], dense...)
}

func (l *Lexicon) score(f weights.Vector) (s float64) {
	for id, x := range f {
		if int(id) < len(l.weights) {
			s += l.weights[id] * x
		}
	}
	return
}

type partial struct {
	tokens   []string
	features weights.Vector
	model    float64
	yield    string
}

// Decode runs a beam of width k over the source words. Partial candidates
// with equal output are merged keeping the better one, so the final list
// holds distinct outputs.
func (l *Lexicon) Decode(source string, k int) (kbest.List, error) {
	if k < 1 {
		return nil, errors.Errorf("k-best size %d", k)
	}
	var beam = []partial{{features: weights.New()}}
	for _, word := range strings.Fields(source) {
		opts := l.table[word]
		if len(opts) == 0 {
			opts = []option{{
				target:   []string{word},
				features: weights.Vector{l.passThrough: 1, l.wordPenalty: -1},
			}}
		}
		var next = make([]partial, 0, len(beam)*len(opts))
		for _, p := range beam {
			for _, o := range opts {
				tokens := make([]string, 0, len(p.tokens)+len(o.target))
				tokens = append(append(tokens, p.tokens...), o.target...)
				f := p.features.Clone()
				f.Add(o.features)
				next = append(next, partial{
					tokens:   tokens,
					features: f,
					model:    p.model + l.score(o.features),
					yield:    strings.Join(tokens, " "),
				})
			}
		}
		beam = prune(next, k)
	}
	var list = make(kbest.List, len(beam))
	for i, p := range beam {
		list[i] = kbest.Hypothesis{
			Tokens:   p.tokens,
			Features: p.features,
			Model:    p.model,
			Rank:     i,
		}
	}
	return list, nil
}

// prune sorts by model score, drops repeated outputs and keeps the k best
func prune(c []partial, k int) []partial {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].model != c[j].model {
			return c[i].model > c[j].model
		}
		return c[i].yield < c[j].yield
	})
	var seen = make(map[string]struct{}, len(c))
	var out = c[:0]
	for _, p := range c {
		if _, ok := seen[p.yield]; ok {
			continue
		}
		seen[p.yield] = struct{}{}
		out = append(out, p)
		if len(out) == k {
			break
		}
	}
	return out
}
