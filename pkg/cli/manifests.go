package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/manifest"
)

var errNoManifest = errors.New("no shapeshift.yaml found in this directory or any parent")

// manifestPaths returns args, or the manifest found from the working
// directory when args is empty.
func manifestPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	path, err := manifest.FindManifest(wd)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errNoManifest
	}
	return []string{path}, nil
}

func asAggregate(err error) (*diagnostics.AggregateError, bool) {
	return diagnostics.AsAggregate(err)
}
