package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/backend"
)

// getBackend returns the renderer selected by opts.
func getBackend(opts Options) (backend.Backend, error) {
	return backend.Lookup(backendName(opts))
}

// OutputPath returns where the rendering of unit is written: the unit name
// with its source extension replaced by the backend's, inside dir when dir
// is not empty.
func OutputPath(unit, dir string, opts Options) (string, error) {
	be, err := getBackend(opts)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(unit, filepath.Ext(unit)) + be.Extension()
	if dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	return base, nil
}

// EmitToFile compiles each unit and writes its rendering next to it, or
// into dir. Units with user errors are not written; their results still
// come back so the caller can report them. It returns the paths written.
func EmitToFile(ctx context.Context, units []Unit, dir string, opts Options) ([]*Result, []string, error) {
	results, err := CompileUnits(ctx, units, opts)
	if err != nil {
		return nil, nil, err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, errors.Wrap(err, "failed to create output dir")
		}
	}

	var written []string
	for _, res := range results {
		if res.Diagnostics.HasErrors() {
			continue
		}
		out, err := OutputPath(res.Name, dir, opts)
		if err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(out, res.Output, 0644); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to write %s", out)
		}
		written = append(written, out)
	}
	return results, written, nil
}
