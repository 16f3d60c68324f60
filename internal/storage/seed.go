// Package storage persists the dictionary: a YAML seed file holding the
// languages and a buntdb journal of runtime registrations.
package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/pricofy/word-translator/internal/domain"
	"gopkg.in/yaml.v3"
)

// Seed is the on-disk dictionary layout.
type Seed struct {
	Languages []domain.Language `yaml:"languages"`
}

// LoadSeed reads the languages from a YAML seed file.
func LoadSeed(path string) ([]domain.Language, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	langs, err := ReadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return langs, nil
}

// ReadSeed decodes languages from r.
func ReadSeed(r io.Reader) ([]domain.Language, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return seed.Languages, nil
}

// WriteSeed encodes langs to w in the seed layout.
func WriteSeed(w io.Writer, langs ...domain.Language) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Seed{Languages: langs}); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}
	return enc.Close()
}
