// Package conf overlays configuration files on flag sets and builds the loggers
package conf

import "bufio"
import "flag"
import "io"
import "log/slog"
import "os"
import "strings"

import "github.com/pkg/errors"

// ErrConfig is returned for malformed configuration files
var ErrConfig = errors.New("malformed configuration")

// Load reads "key = value" lines from r and sets the flags of fs. Flags
// already given on the command line win. Blank lines and lines starting
// with '#' are skipped. A key may repeat for flags that collect values.
func Load(fs *flag.FlagSet, r io.Reader) error {
	var given = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		given[f.Name] = true
	})
	var scanner = bufio.NewScanner(r)
	var n int
	for scanner.Scan() {
		n++
		var line = strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return errors.Wrapf(ErrConfig, "line %d: %q", n, line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if fs.Lookup(key) == nil {
			return errors.Wrapf(ErrConfig, "line %d: unknown option %q", n, key)
		}
		if given[key] {
			continue
		}
		if err := fs.Set(key, value); err != nil {
			return errors.Wrapf(err, "line %d: %s", n, key)
		}
	}
	return errors.Wrap(scanner.Err(), "reading configuration")
}

// LoadFile is Load on the named file, an empty name does nothing
func LoadFile(fs *flag.FlagSet, name string) error {
	if name == "" {
		return nil
	}
	fd, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "opening configuration")
	}
	defer fd.Close()
	return errors.Wrap(Load(fs, fd), name)
}

// NewLogger creates a text logger on w. quiet keeps only warnings and errors,
// verbose adds debug messages.
func NewLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	var level = slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
