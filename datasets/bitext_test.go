package datasets

import "compress/gzip"
import "errors"
import "os"
import "path/filepath"
import "strings"
import "testing"

func TestParseLine(t *testing.T) {
	for _, c := range []struct {
		line   string
		source string
		refs   int
	}{
		{"das haus ||| the house", "das haus", 1},
		{"das haus ||| the house ||| the home", "das haus", 2},
		{"das haus", "das haus", 0},
		{"", "", 0},
		{"a||| b", "a||| b", 0},
	} {
		s := ParseLine(c.line)
		if s.Source != c.source || len(s.References) != c.refs {
			t.Errorf("%q: %q %v", c.line, s.Source, s.References)
		}
	}
}

func TestLoop(t *testing.T) {
	var got []Sample
	err := Loop(strings.NewReader("a ||| x\nb ||| y ||| z\nc\n"), func(i int, s Sample) error {
		if i != len(got) {
			t.Errorf("index %d", i)
		}
		got = append(got, s)
		return nil
	})
	if err != nil || len(got) != 3 || got[1].References[1] != "z" {
		t.Errorf("%v %v", got, err)
	}
	stop := errors.New("stop")
	err = Loop(strings.NewReader("a\nb\n"), func(i int, s Sample) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("error not passed through: %v", err)
	}
}

func TestOpenGzip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "corpus.gz")
	fd, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(fd)
	zw.Write([]byte("das haus ||| the house\n"))
	zw.Close()
	fd.Close()

	r, err := Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var n int
	Loop(r, func(i int, s Sample) error {
		n++
		if s.References[0] != "the house" {
			t.Errorf("reference %q", s.References[0])
		}
		return nil
	})
	if n != 1 {
		t.Errorf("lines = %d", n)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("missing file opened")
	}
}
