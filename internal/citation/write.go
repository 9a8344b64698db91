package citation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes the document back to CFF YAML.
func (f *File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding citation file: %w", err)
	}
	return data, nil
}

// Save writes the document to disk as CFF YAML.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing citation file: %w", err)
	}
	return nil
}
