package weights

import "bufio"
import "compress/gzip"
import "io"
import "os"
import "sort"
import "strconv"
import "strings"

import "github.com/pkg/errors"

// ErrMalformed is returned when a weights line can not be parsed
var ErrMalformed = errors.New("malformed weights line")

// Write writes v as one "name<TAB>value" line per nonzero feature, sorted by name
func Write(w io.Writer, v Vector, d *Dictionary) error {
	var lines = make([]string, 0, len(v))
	for f, x := range v {
		if x == 0 {
			continue
		}
		lines = append(lines, d.Name(f)+"\t"+strconv.FormatFloat(x, 'g', -1, 64))
	}
	sort.Strings(lines)
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read reads a weights file into a new vector, registering the names in d.
// Empty lines and lines starting with '#' are skipped.
func Read(r io.Reader, d *Dictionary) (Vector, error) {
	var v = New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var n int
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		p := strings.LastIndexAny(line, " \t")
		if p <= 0 {
			return nil, errors.Wrapf(ErrMalformed, "line %d", n)
		}
		x, err := strconv.ParseFloat(line[p+1:], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %v", n, err)
		}
		v[d.ID(strings.TrimSpace(line[:p]))] = x
	}
	return v, scanner.Err()
}

// WriteFile writes v into the named file, "-" means standard output and a
// ".gz" suffix selects gzip compression
func WriteFile(name string, v Vector, d *Dictionary) error {
	if name == "-" {
		return Write(os.Stdout, v, d)
	}
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create weights file")
	}
	if strings.HasSuffix(name, ".gz") {
		gw := gzip.NewWriter(file)
		err = Write(gw, v, d)
		if cerr := gw.Close(); err == nil {
			err = cerr
		}
	} else {
		err = Write(file, v, d)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "write weights %s", name)
}

// ReadFile reads the named weights file, "-" means standard input and a
// ".gz" suffix selects gzip decompression
func ReadFile(name string, d *Dictionary) (Vector, error) {
	if name == "-" {
		return Read(os.Stdin, d)
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open weights file")
	}
	defer file.Close()
	var r io.Reader = file
	if strings.HasSuffix(name, ".gz") {
		gr, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "read weights %s", name)
		}
		defer gr.Close()
		r = gr
	}
	v, err := Read(r, d)
	return v, errors.Wrapf(err, "read weights %s", name)
}
