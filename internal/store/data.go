package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-hhapply/internal/hh"
)

// Data is the content of data.json.
type Data struct {
	Token     hh.Token `json:"token"`
	UserAgent string   `json:"user_agent,omitempty"`
}

// DataFile reads and writes data.json.
type DataFile struct {
	path string
}

// NewDataFile binds a DataFile to path.
func NewDataFile(path string) *DataFile {
	return &DataFile{path: path}
}

// Path returns the file location.
func (f *DataFile) Path() string {
	return f.path
}

// Load reads the file. A missing file yields zero Data.
func (f *DataFile) Load() (Data, error) {
	var d Data
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("%s: %w: %v", f.path, ErrCorrupt, err)
	}
	return d, nil
}

// Save writes d, readable by the owner only.
func (f *DataFile) Save(d Data) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	return writeFileAtomic(f.path, append(raw, '\n'))
}

// EnsureUserAgent returns the stored user agent, generating and saving one
// with gen when there is none.
func (f *DataFile) EnsureUserAgent(gen func() string) (Data, error) {
	d, err := f.Load()
	if err != nil {
		return d, err
	}
	if d.UserAgent != "" {
		return d, nil
	}
	d.UserAgent = gen()
	return d, f.Save(d)
}
