// Package datasets reads the bitext training corpus
package datasets

import "bufio"
import "compress/gzip"
import "io"
import "os"
import "strings"

import "github.com/pkg/errors"

// Separator separates the source from the references on a corpus line
const Separator = " ||| "

// maxLine is the longest corpus line accepted
const maxLine = 16 << 20

// Sample is one corpus line
type Sample struct {
	Source     string
	References []string
}

// String joins the sample back into a corpus line
func (s Sample) String() string {
	return strings.Join(append([]string{s.Source}, s.References...), Separator)
}

// ParseLine splits "source ||| ref1 ||| ref2". A line without separator has no references.
func ParseLine(line string) Sample {
	var parts = strings.Split(line, Separator)
	var s = Sample{Source: strings.TrimSpace(parts[0])}
	for _, r := range parts[1:] {
		s.References = append(s.References, strings.TrimSpace(r))
	}
	return s
}

// Loop calls do for every line of r with its zero based index.
// It stops at the first error returned by do.
func Loop(r io.Reader, do func(i int, s Sample) error) error {
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	var i int
	for scanner.Scan() {
		if err := do(i, ParseLine(scanner.Text())); err != nil {
			return err
		}
		i++
	}
	return errors.Wrap(scanner.Err(), "reading corpus")
}

type file struct {
	io.Reader
	closers []io.Closer
}

func (f *file) Close() (err error) {
	for i := len(f.closers) - 1; i >= 0; i-- {
		if e := f.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Open opens a corpus file, "-" is stdin and names ending in ".gz" are decompressed
func Open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fd, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening corpus")
	}
	if !strings.HasSuffix(name, ".gz") {
		return fd, nil
	}
	zr, err := gzip.NewReader(fd)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "corpus %s", name)
	}
	return &file{Reader: zr, closers: []io.Closer{fd, zr}}, nil
}
