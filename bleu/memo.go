package bleu

import "encoding/binary"
import "math"
import "sync/atomic"

import "github.com/VictoriaMetrics/fastcache"

// Memo remembers the gold score of hypotheses per sentence. A sentence is
// decoded again in every epoch and usually yields many of the same
// hypotheses, the references never change so a remembered score stays valid.
// A nil Memo scores directly.
type Memo struct {
	cache        *fastcache.Cache
	hits, misses atomic.Uint64
}

// NewMemo creates a memo using at most maxBytes, nil when maxBytes <= 0
func NewMemo(maxBytes int) *Memo {
	if maxBytes <= 0 {
		return nil
	}
	return &Memo{cache: fastcache.New(maxBytes)}
}

func memoKey(sentence int, hyp []string) []byte {
	var size = 8
	for _, w := range hyp {
		size += len(w) + 1
	}
	var key = make([]byte, 8, size)
	binary.LittleEndian.PutUint64(key, uint64(sentence))
	for _, w := range hyp {
		key = append(key, w...)
		key = append(key, 0)
	}
	return key
}

// Score returns the remembered score of hyp for sentence, computing and storing it on a miss
func (m *Memo) Score(s *Scorer, sentence int, hyp []string, ref *Reference) float64 {
	if m == nil {
		return s.Score(hyp, ref)
	}
	key := memoKey(sentence, hyp)
	if bits, ok := m.cache.HasGet(nil, key); ok && len(bits) == 8 {
		m.hits.Add(1)
		return math.Float64frombits(binary.LittleEndian.Uint64(bits))
	}
	m.misses.Add(1)
	score := s.Score(hyp, ref)
	var bits [8]byte
	binary.LittleEndian.PutUint64(bits[:], math.Float64bits(score))
	m.cache.Set(key, bits[:])
	return score
}

// Stats reports the number of hits and misses so far
func (m *Memo) Stats() (hits, misses uint64) {
	if m == nil {
		return 0, 0
	}
	return m.hits.Load(), m.misses.Load()
}

// Reset forgets all remembered scores
func (m *Memo) Reset() {
	if m == nil {
		return
	}
	m.cache.Reset()
}
