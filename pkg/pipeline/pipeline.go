// Package pipeline provides the decode → check → report flow for histvet.
//
// This package implements the complete validation pipeline shared by the
// CLI and the HTTP API. Centralizing it keeps verdict caching and report
// persistence behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: read declarations from a commit-log file, or accept them
//     pre-decoded (the API path)
//  2. Check: resolve overrides, build the graph, run the acyclicity check,
//     consulting the verdict cache first
//  3. Report: optionally persist the outcome to a report store
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "commits.json"})
//	if err != nil {
//	    return err
//	}
//	if !result.Acyclic {
//	    // reject the history
//	}
package pipeline

import (
	"time"

	"github.com/jmalbrecht/histvet/pkg/commit"
	"github.com/jmalbrecht/histvet/pkg/dag"
	"github.com/jmalbrecht/histvet/pkg/errors"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// DefaultCacheTTL bounds how long verdicts stay cached. Verdicts are
// immutable for a given history, so the TTL only limits disk growth.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Options configures one pipeline run. The struct serializes to JSON so
// API requests can carry it directly.
type Options struct {
	// Path is a commit-log file to decode. Mutually exclusive with
	// Declarations; when both are set, Path wins.
	Path string `json:"path,omitempty"`

	// Declarations is a pre-decoded sequence, used by callers that ingest
	// commits themselves (spec'd wire parsing stays outside the checker).
	Declarations []commit.Declaration `json:"commits,omitempty"`

	// Policy is the dangling-parent policy name: "implicit" (default) or
	// "strict".
	Policy string `json:"policy,omitempty"`

	// Source is a free-form label stored on the report (repository name,
	// ingest batch id).
	Source string `json:"source,omitempty"`

	// Refresh bypasses the cache read (the fresh verdict is still written).
	Refresh bool `json:"refresh,omitempty"`

	// Persist writes a report to the runner's store.
	Persist bool `json:"persist,omitempty"`

	policy    dag.Policy
	validated bool
}

// ValidateAndSetDefaults checks option fields and resolves the policy.
// Idempotent; every Runner entry point calls it.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	p, err := dag.ParsePolicy(o.Policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPolicy, err, "policy")
	}
	o.policy = p
	o.Policy = p.String()
	if err := errors.ValidateSourceLabel(o.Source); err != nil {
		return err
	}
	if o.Path != "" {
		if err := errors.ValidatePath(o.Path); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Acyclic is the verdict: true iff the history forms a DAG.
	Acyclic bool

	// HistoryHash is the content hash of the effective history, used as
	// the cache key and recorded on reports.
	HistoryHash string

	// Report is the persisted report, if Persist was set and a store is
	// configured.
	Report *store.Report

	// Stats contains size and timing information.
	Stats Stats

	// CacheInfo tracks whether the verdict came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int // node count, implicit nodes included
	Edges      int // edge count after override resolution
	DecodeTime time.Duration
	CheckTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	CheckHit bool // verdict came from cache
}

// verdict is the cached serialization of a check outcome.
type verdict struct {
	Acyclic bool `json:"acyclic"`
	Nodes   int  `json:"nodes"`
	Edges   int  `json:"edges"`
}
