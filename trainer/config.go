package trainer

import "io"
import "strings"

import "github.com/pkg/errors"

// Selection selects the weights returned at the end of training
type Selection int

const (
	// Last returns the weights after the final epoch
	Last Selection = iota
	// Best returns the weights of the epoch with the highest average 1-best gold score
	Best
	// Average returns the average of the weights after every epoch
	Average
	// Discard returns nothing and writes nothing
	Discard
)

var selectionNames = map[Selection]string{
	Last:    "last",
	Best:    "best",
	Average: "avg",
	Discard: "VOID",
}

func (s Selection) String() string {
	return selectionNames[s]
}

// ErrConfig is returned for an invalid training configuration
var ErrConfig = errors.New("invalid training configuration")

// ParseSelection parses "last", "best", "avg" or "VOID"
func ParseSelection(name string) (Selection, error) {
	for s, n := range selectionNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return Last, errors.Wrapf(ErrConfig, "select_weights %q", name)
}

type Config struct {
	K         int  // k-best list size
	N         int  // BLEU order
	Epochs    int  // passes over the corpus
	StopAfter int  // read only this many sentences, 0 reads all
	NoUpdate  bool // decode and score only
	Keep      bool // write weights.<epoch>.gz after every epoch

	Select  Selection
	Output  string // selected weights, "-" is stdout, "" writes nothing
	WorkDir string // directory of the per-epoch weight files

	OutputRanking string    // directory receiving <epoch>.<sentence>.list files
	OutputPairs   io.Writer // receives the pairs of the output-only strategy

	Threads         int // goroutines scoring a k-best list
	ScoreCacheBytes int // size of the gold score memo, 0 disables it

	PrintWeights []string  // feature names logged with the final weights
	Progress     io.Writer // receives progress dots, nil for none
}

// Validate checks the configuration before any training happens
func (c *Config) Validate() error {
	switch {
	case c.K < 1:
		return errors.Wrapf(ErrConfig, "k %d", c.K)
	case c.N < 1:
		return errors.Wrapf(ErrConfig, "N %d", c.N)
	case c.Epochs < 1:
		return errors.Wrapf(ErrConfig, "epochs %d", c.Epochs)
	case c.StopAfter < 0:
		return errors.Wrapf(ErrConfig, "stop_after %d", c.StopAfter)
	}
	return nil
}
