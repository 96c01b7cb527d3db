// Package bankfile reads and writes question bank files: the JSON
// import/export document, spreadsheet banks, and the hosted sample bank.
package bankfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// DefaultExportBase names exports when no file was ever imported.
const DefaultExportBase = "mbe_quiz_backup"

// File is the import/export document.
type File struct {
	Questions []*quiz.Question `json:"questions"`
	Groups    []*quiz.Group    `json:"groups"`
}

// FormatError reports a bank file that could not be parsed or does not
// match the expected shape.
type FormatError struct {
	Name string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid bank file %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("invalid bank file: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Decode parses and validates a JSON bank file. A missing "groups" key
// decodes to an empty slice.
func Decode(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := validate(parsed); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &FormatError{Err: err}
	}
	if f.Groups == nil {
		f.Groups = []*quiz.Group{}
	}
	return &f, nil
}

// Encode writes f as indented JSON.
func Encode(w io.Writer, f *File) error {
	out := *f
	if out.Questions == nil {
		out.Questions = []*quiz.Question{}
	}
	if out.Groups == nil {
		out.Groups = []*quiz.Group{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

// Read loads a bank from path, choosing the decoder by extension.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err = ReadXLSX(bytes.NewReader(data))
	default:
		f, err = Decode(bytes.NewReader(data))
	}
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Name == "" {
			fe.Name = filepath.Base(path)
		}
		return nil, err
	}
	return f, nil
}

// Write stores f at path as indented JSON.
func Write(path string, f *File) error {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return fmt.Errorf("encode bank file: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExportFileName builds "<base>_<YYYY-MM-DD>.json" from the last imported
// file name. A trailing ".json" on the base is dropped.
func ExportFileName(lastLoaded string, now time.Time) string {
	base := strings.TrimSpace(filepath.Base(lastLoaded))
	if lastLoaded == "" || base == "." || base == string(filepath.Separator) {
		base = DefaultExportBase
	}
	if strings.HasSuffix(strings.ToLower(base), ".json") {
		base = base[:len(base)-len(".json")]
	}
	if base == "" {
		base = DefaultExportBase
	}
	return fmt.Sprintf("%s_%s.json", base, now.Format("2006-01-02"))
}
