package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmalbrecht/histvet/pkg/commit"
)

// WriteJSON writes the effective declarations of a history as a JSON
// commit log. Output order is first-insertion order, so re-importing the
// file reproduces the same history (round-trip fidelity after override
// resolution).
func WriteJSON(h *commit.History, w io.Writer) error {
	decls := h.Declarations()
	for i := range decls {
		if decls[i].Parents == nil {
			decls[i].Parents = []string{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(commitLog{Commits: decls}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes a history to a JSON file at path with 0644 permissions.
func ExportFile(h *commit.History, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(h, f)
}

// Marshal returns the JSON commit-log encoding of a history. This is the
// canonical byte form used for content hashing by the verdict cache.
func Marshal(h *commit.History) ([]byte, error) {
	decls := h.Declarations()
	for i := range decls {
		if decls[i].Parents == nil {
			decls[i].Parents = []string{}
		}
	}
	return json.Marshal(commitLog{Commits: decls})
}
