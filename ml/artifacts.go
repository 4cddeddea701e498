package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	imputerFile = "imputer.json"
	scalerFile  = "scaler.json"
	modelFile   = "model.json"
	columnsFile = "feature_columns.json"
)

// Bundle holds the four fitted artifacts of one training run. They are loaded
// once and read-only afterwards; mixing versions silently corrupts predictions,
// so all four always come from the same directory.
type Bundle struct {
	Imputer        *Imputer
	Scaler         *Scaler
	Model          *LogisticModel
	FeatureColumns []string
}

// LoadBundle reads all artifacts from dir. A missing or unreadable file is an
// ArtifactLoadError; a column list that disagrees with the serving schema is
// an ArtifactMismatchError.
func LoadBundle(dir string) (*Bundle, error) {
	bundle := &Bundle{
		Imputer: &Imputer{},
		Scaler:  &Scaler{},
		Model:   &LogisticModel{},
	}
	if err := readArtifact(filepath.Join(dir, imputerFile), bundle.Imputer); err != nil {
		return nil, err
	}
	if err := readArtifact(filepath.Join(dir, scalerFile), bundle.Scaler); err != nil {
		return nil, err
	}
	if err := readArtifact(filepath.Join(dir, modelFile), bundle.Model); err != nil {
		return nil, err
	}
	if err := readArtifact(filepath.Join(dir, columnsFile), &bundle.FeatureColumns); err != nil {
		return nil, err
	}

	if len(bundle.FeatureColumns) != len(FeatureColumns) {
		return nil, &ArtifactMismatchError{Stage: "feature columns", Expected: len(FeatureColumns), Got: len(bundle.FeatureColumns)}
	}
	for i, name := range bundle.FeatureColumns {
		if name != FeatureColumns[i] {
			return nil, &ArtifactLoadError{
				Path: filepath.Join(dir, columnsFile),
				Err:  fmt.Errorf("column %d is %q, serving schema expects %q", i, name, FeatureColumns[i]),
			}
		}
	}
	return bundle, nil
}

func readArtifact(path string, target interface{}) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	return nil
}

// ArtifactProvider lazily loads the bundle at most once, even under
// concurrent first requests, and hands out the same read-only handle for the
// rest of the process lifetime.
type ArtifactProvider struct {
	dir    string
	once   sync.Once
	bundle *Bundle
	err    error
}

func NewArtifactProvider(dir string) *ArtifactProvider {
	return &ArtifactProvider{dir: dir}
}

func (p *ArtifactProvider) Bundle() (*Bundle, error) {
	p.once.Do(func() {
		p.bundle, p.err = LoadBundle(p.dir)
	})
	return p.bundle, p.err
}

// Dir returns the configured artifact directory.
func (p *ArtifactProvider) Dir() string { return p.dir }
