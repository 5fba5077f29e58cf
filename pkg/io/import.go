package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmalbrecht/histvet/pkg/commit"
	"github.com/jmalbrecht/histvet/pkg/errors"
)

// commitLog is the JSON file envelope.
type commitLog struct {
	Commits []commit.Declaration `json:"commits"`
}

// ReadJSON decodes a JSON commit log from r.
//
// The input must be an object with a "commits" array; each entry needs an
// "id" field and may carry a "parents" array. Declarations are returned in
// file order, duplicates included. Returns an INVALID_FORMAT error for
// malformed JSON and an INVALID_COMMIT_ID error for an empty or otherwise
// unusable identifier.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]commit.Declaration, error) {
	var data commitLog
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode commit log")
	}
	if err := validateDeclarations(data.Commits); err != nil {
		return nil, err
	}
	return data.Commits, nil
}

// ReadNDJSON decodes a newline-delimited commit log from r: one commit
// object per line, blank lines skipped. Line numbers appear in error
// messages to make large ingest files debuggable.
func ReadNDJSON(r io.Reader) ([]commit.Declaration, error) {
	var decls []commit.Declaration
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var d commit.Declaration
		if err := json.Unmarshal([]byte(text), &d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		if err := errors.ValidateCommitID(d.ID); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "line %d", line)
		}
		decls = append(decls, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read commit log")
	}
	return decls, nil
}

// ImportFile reads a commit log at path, choosing the decoder by file
// extension: .ndjson and .jsonl use [ReadNDJSON], everything else [ReadJSON].
// The error wraps the underlying cause with the file path for context.
func ImportFile(path string) ([]commit.Declaration, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return ReadNDJSON(f)
	default:
		return ReadJSON(f)
	}
}

func validateDeclarations(decls []commit.Declaration) error {
	for i, d := range decls {
		if err := errors.ValidateCommitID(d.ID); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "commit %d", i)
		}
	}
	return nil
}
