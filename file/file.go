// Package file persists generated characters as plain-text files.
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/multiverse"
)

const (
	timeLayout   = "20060102_150405"
	headerEnd    = "---"
	headerLines  = 4
	maxSuffix    = 1000
	filePerm     = 0o644
	dirPerm      = 0o755
	headerFormat = "Universe: %s\nDetails: %s\nGenerated: %s\n" + headerEnd + "\n"
)

// Interface compliance check.
var _ multiverse.CharacterStore = (*Store)(nil)

// Store writes characters to {universe}_{YYYYMMDD_HHMMSS}.txt files in Dir.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Save writes c and returns the path of the new file. Existing files are
// never overwritten: a name collision appends _2, _3, ... before the
// extension. Errors are returned as *multiverse.PersistError.
func (s *Store) Save(ctx context.Context, c multiverse.Character) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &multiverse.PersistError{Err: err}
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &multiverse.PersistError{Path: dir, Err: fmt.Errorf("create directory: %w", err)}
	}

	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	base := FileName(c.Universe, created)
	stem := strings.TrimSuffix(base, ".txt")

	for n := 1; n <= maxSuffix; n++ {
		name := base
		if n > 1 {
			name = stem + "_" + strconv.Itoa(n) + ".txt"
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", &multiverse.PersistError{Path: path, Err: err}
		}
		if err := write(f, c, created); err != nil {
			f.Close()
			os.Remove(path) // best-effort cleanup
			return "", &multiverse.PersistError{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return "", &multiverse.PersistError{Path: path, Err: err}
		}
		return path, nil
	}
	return "", &multiverse.PersistError{
		Path: filepath.Join(dir, base),
		Err:  fmt.Errorf("no free file name after %d attempts", maxSuffix),
	}
}

func write(f *os.File, c multiverse.Character, created time.Time) error {
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, headerFormat, escapeHeader(c.Universe), escapeHeader(strings.Join(c.Details, ", ")), created.Format(time.RFC3339))
	w.WriteString(c.Text)
	if !strings.HasSuffix(c.Text, "\n") {
		w.WriteByte('\n')
	}
	return w.Flush()
}

// FileName returns the base file name for a character of universe generated
// at t.
func FileName(universe string, t time.Time) string {
	return universe + "_" + t.Format(timeLayout) + ".txt"
}

// headerEscaper keeps each header value on a single line.
var headerEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`)

func escapeHeader(s string) string {
	return headerEscaper.Replace(s)
}

// Load reads a saved character file and returns its description body.
// Files without a header are returned whole.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	content := string(data)
	// Header values are escaped onto one line each, so the header is always
	// headerLines long.
	lines := strings.SplitN(content, "\n", headerLines+1)
	if len(lines) == headerLines+1 && strings.HasPrefix(lines[0], "Universe: ") && lines[headerLines-1] == headerEnd {
		return strings.TrimSuffix(lines[headerLines], "\n"), nil
	}
	return strings.TrimSuffix(content, "\n"), nil
}
