package session

import "strconv"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/datasets"

// Kind is the kind of a command
type Kind int

const (
	Invalid Kind = iota
	Translate
	Learn
	SetLearningRate
	SetLearningRates
	ResetLearningRate
	ResetLearningRates
	SetWeight
	GetWeight
	ResetWeights
	Shutdown
)

var kindNames = map[Kind]string{
	Invalid:            "invalid",
	Translate:          "act:translate",
	Learn:              "act:translate_learn",
	SetLearningRate:    "set_learning_rate",
	SetLearningRates:   "set_learning_rates",
	ResetLearningRate:  "reset_learning_rate",
	ResetLearningRates: "reset_learning_rates",
	SetWeight:          "set_weight",
	GetWeight:          "get_weight",
	ResetWeights:       "reset_weights",
	Shutdown:           "shutdown",
}

func (k Kind) String() string {
	return kindNames[k]
}

// ErrCommand is returned for messages that are no valid command
var ErrCommand = errors.New("unknown command")

// Command is a parsed request
type Command struct {
	Kind Kind

	Source     string   // Translate and Learn
	References []string // Learn

	Name   string             // feature or group of the single name commands
	Value  float64            // SetLearningRate and SetWeight
	Values map[string]float64 // SetLearningRates
}

// Parse parses one message. Reserved names only match as the whole first
// token, the commands without arguments only as the whole message. A message that is no reserved command but holds " ||| " is a learn
// request, anything else is rejected.
func Parse(msg []byte) (Command, error) {
	var s = strings.TrimSpace(strings.TrimRight(string(msg), "\x00"))
	head, rest, _ := strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)
	switch head {
	case Translate.String():
		if source := trimSeparator(rest); source != "" {
			return Command{Kind: Translate, Source: source}, nil
		}
		return Command{}, errors.Wrap(ErrCommand, head+" without source")
	case Learn.String():
		return learn(trimSeparator(rest))
	case SetLearningRate.String(), SetWeight.String():
		var kind = SetWeight
		if head == SetLearningRate.String() {
			kind = SetLearningRate
		}
		name, value, err := nameValue(rest)
		if err != nil {
			return Command{}, errors.Wrap(err, head)
		}
		return Command{Kind: kind, Name: name, Value: value}, nil
	case SetLearningRates.String():
		var values = make(map[string]float64)
		for _, tok := range strings.Fields(rest) {
			name, value, err := nameValue(strings.Replace(tok, "=", " ", 1))
			if err != nil {
				return Command{}, errors.Wrap(err, head)
			}
			values[name] = value
		}
		if len(values) == 0 {
			return Command{}, errors.Wrap(ErrCommand, head+" without rates")
		}
		return Command{Kind: SetLearningRates, Values: values}, nil
	case ResetLearningRate.String(), GetWeight.String():
		var kind = GetWeight
		if head == ResetLearningRate.String() {
			kind = ResetLearningRate
		}
		if len(strings.Fields(rest)) != 1 {
			return Command{}, errors.Wrap(ErrCommand, head+" needs one name")
		}
		return Command{Kind: kind, Name: rest}, nil
	case ResetLearningRates.String():
		if rest == "" {
			return Command{Kind: ResetLearningRates}, nil
		}
	case ResetWeights.String():
		if rest == "" {
			return Command{Kind: ResetWeights}, nil
		}
	case Shutdown.String():
		if rest == "" {
			return Command{Kind: Shutdown}, nil
		}
	}
	if strings.Contains(s, datasets.Separator) {
		return learn(s)
	}
	return Command{}, errors.Wrapf(ErrCommand, "%.40q", s)
}

func trimSeparator(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "|||"))
}

func learn(s string) (Command, error) {
	var sample = datasets.ParseLine(s)
	if sample.Source == "" || len(sample.References) == 0 {
		return Command{}, errors.Wrap(ErrCommand, "learn request needs a source and references")
	}
	return Command{Kind: Learn, Source: sample.Source, References: sample.References}, nil
}

func nameValue(s string) (string, float64, error) {
	var f = strings.Fields(s)
	if len(f) != 2 {
		return "", 0, errors.Wrapf(ErrCommand, "want <name> <value>, got %q", s)
	}
	x, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return "", 0, errors.Wrapf(ErrCommand, "value %q", f[1])
	}
	return f[0], x, nil
}
