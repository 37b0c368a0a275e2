package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a backup file
type Loader struct {
	filePath string
}

// NewLoader creates a new backup loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the backup file. "-" reads stdin.
func (l *Loader) Load() (Document, error) {
	var (
		data []byte
		err  error
	)
	if l.filePath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(l.filePath)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read backup file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a backup document. Unknown fields are rejected so typos in
// hand-written seed files surface early.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, fmt.Errorf("backup file is empty")
		}
		return Document{}, fmt.Errorf("failed to parse backup yaml: %w", err)
	}

	if doc.Version > CurrentVersion {
		return Document{}, fmt.Errorf("unsupported backup version %d", doc.Version)
	}
	return doc, nil
}
