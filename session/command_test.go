package session

import "errors"
import "testing"

func TestParse(t *testing.T) {
	for _, c := range []struct {
		msg  string
		want Command
	}{
		{"act:translate das haus", Command{Kind: Translate, Source: "das haus"}},
		{"act:translate ||| das haus", Command{Kind: Translate, Source: "das haus"}},
		{"act:translate_learn a b ||| x", Command{Kind: Learn, Source: "a b", References: []string{"x"}}},
		{"a b ||| x ||| y z", Command{Kind: Learn, Source: "a b", References: []string{"x", "y z"}}},
		{"set_learning_rate R 0.5", Command{Kind: SetLearningRate, Name: "R", Value: 0.5}},
		{"reset_learning_rate R", Command{Kind: ResetLearningRate, Name: "R"}},
		{"reset_learning_rates", Command{Kind: ResetLearningRates}},
		{"set_weight F1 -2", Command{Kind: SetWeight, Name: "F1", Value: -2}},
		{"get_weight F1", Command{Kind: GetWeight, Name: "F1"}},
		{"reset_weights", Command{Kind: ResetWeights}},
		{"shutdown", Command{Kind: Shutdown}},
		{"shutdown\x00", Command{Kind: Shutdown}},
		{"shutdown the server ||| x", Command{Kind: Learn, Source: "shutdown the server", References: []string{"x"}}},
		{"reset_weights a ||| x", Command{Kind: Learn, Source: "reset_weights a", References: []string{"x"}}},
		{"reset_learning_rates now ||| x y", Command{Kind: Learn, Source: "reset_learning_rates now", References: []string{"x y"}}},
	} {
		got, err := Parse([]byte(c.msg))
		if err != nil {
			t.Errorf("%q: %v", c.msg, err)
			continue
		}
		if got.Kind != c.want.Kind || got.Source != c.want.Source || got.Name != c.want.Name ||
			got.Value != c.want.Value || len(got.References) != len(c.want.References) {
			t.Errorf("%q: %+v", c.msg, got)
			continue
		}
		for i := range got.References {
			if got.References[i] != c.want.References[i] {
				t.Errorf("%q: reference %d = %q", c.msg, i, got.References[i])
			}
		}
	}
}

func TestParseRates(t *testing.T) {
	got, err := Parse([]byte("set_learning_rates R=0.5 F1=2"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != SetLearningRates || len(got.Values) != 2 || got.Values["R"] != 0.5 || got.Values["F1"] != 2 {
		t.Errorf("%+v", got)
	}
}

func TestParseRejects(t *testing.T) {
	for _, msg := range []string{
		"",
		"bogus",
		"shutdwon",
		"act:translatex foo",
		"act:translate",
		"act:translate_learn a",
		"set_weight F1",
		"set_weight F1 x",
		"get_weight",
		"set_learning_rates",
		"set_learning_rates R",
		" ||| x",
		"shutdown now",
		"reset_weights all",
	} {
		if _, err := Parse([]byte(msg)); !errors.Is(err, ErrCommand) {
			t.Errorf("%q: %v", msg, err)
		}
	}
}

func FuzzParse(f *testing.F) {
	f.Add("act:translate das haus")
	f.Add("a ||| b")
	f.Add("set_learning_rates R=1")
	f.Fuzz(func(t *testing.T, msg string) {
		cmd, err := Parse([]byte(msg))
		if err != nil {
			return
		}
		if cmd.Kind == Invalid {
			t.Errorf("%q parsed to an invalid command", msg)
		}
		if cmd.Kind == Learn && len(cmd.References) == 0 {
			t.Errorf("%q: learn without references", msg)
		}
	})
}
