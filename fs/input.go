package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/medreg"
)

// Ensure InputSource implements medreg.InputSource at compile time.
var _ medreg.InputSource = (*InputSource)(nil)

// InputSource reads the actor input from the default local key-value store.
type InputSource struct {
	path string
}

// NewInputSource creates an input source below storageDir.
func NewInputSource(storageDir string) *InputSource {
	if storageDir == "" {
		storageDir = DefaultStorageDir
	}
	return &InputSource{path: filepath.Join(storageDir, "key_value_stores", DefaultName, "INPUT.json")}
}

// Path returns the location of the input file.
func (s *InputSource) Path() string { return s.path }

// Input implements medreg.InputSource. A missing file yields an empty input.
func (s *InputSource) Input(_ context.Context) (*medreg.Input, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &medreg.Input{}, nil
	} else if err != nil {
		return nil, err
	}

	var in medreg.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "invalid input %s: %v", s.path, err)
	}
	return &in, nil
}
