package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sheetsync/sheetsync/internal/engine"
	"github.com/sheetsync/sheetsync/internal/snapfile"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

func newEngine() *engine.Engine {
	return engine.New()
}

// loadSnapshot reads one snapshot document, labeling errors with the
// argument's role so failures in multi-file commands are attributable.
func loadSnapshot(role, path string) (*snapshot.Snapshot, error) {
	snap, err := snapfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", role, err)
	}
	return snap, nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
