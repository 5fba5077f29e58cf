package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jmalbrecht/histvet/pkg/cache"
	"github.com/jmalbrecht/histvet/pkg/commit"
	"github.com/jmalbrecht/histvet/pkg/dag"
	"github.com/jmalbrecht/histvet/pkg/errors"
	histio "github.com/jmalbrecht/histvet/pkg/io"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// Runner executes the validation pipeline with caching and optional
// report persistence.
//
// The Runner is stateless apart from its collaborators; every Execute call
// builds and discards its own history and graph, so one Runner can serve
// concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching (NullCache), a
// nil keyer uses the DefaultKeyer, a nil store disables report
// persistence, and a nil logger falls back to log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// Execute runs decode → check → report and returns the verdict.
//
// A cyclic history is a normal Result with Acyclic=false, never an error.
// Errors come from decoding, from a strict-policy dangling parent
// (DANGLING_PARENT code, wrapping [dag.DanglingParentError]), or from the
// report store.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	decodeStart := time.Now()
	hist, err := r.decode(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.DecodeTime = time.Since(decodeStart)

	raw, err := histio.Marshal(hist)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash history")
	}
	result.HistoryHash = cache.Hash(raw)
	key := r.Keyer.VerdictKey(result.HistoryHash, opts.Policy)

	checkStart := time.Now()
	v, hit := r.cachedVerdict(ctx, key, opts)
	if !hit {
		v, err = r.check(hist, opts)
		if err != nil {
			return nil, err
		}
		r.storeVerdict(ctx, key, v)
	}
	result.Stats.CheckTime = time.Since(checkStart)
	result.CacheInfo.CheckHit = hit
	result.Acyclic = v.Acyclic
	result.Stats.Nodes = v.Nodes
	result.Stats.Edges = v.Edges

	r.Logger.Info("checked history",
		"nodes", v.Nodes,
		"edges", v.Edges,
		"acyclic", v.Acyclic,
		"cached", hit,
		"duration", result.Stats.CheckTime)

	if opts.Persist && r.Store != nil {
		rep := store.NewReport()
		rep.Source = opts.Source
		rep.HistoryHash = result.HistoryHash
		rep.Policy = opts.Policy
		rep.Acyclic = v.Acyclic
		rep.Nodes = v.Nodes
		rep.Edges = v.Edges
		rep.Duration = result.Stats.CheckTime.Microseconds()
		if err := r.Store.Put(ctx, rep); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "persist report")
		}
		result.Report = &rep
	}

	return result, nil
}

// Check runs the check stage only, for callers that already hold
// declarations and want no caching or persistence.
func (r *Runner) Check(decls []commit.Declaration, policyName string) (bool, error) {
	policy, err := dag.ParsePolicy(policyName)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "policy")
	}
	ok, err := dag.Check(decls, policy)
	if err != nil {
		return false, wrapCheckErr(err)
	}
	return ok, nil
}

func (r *Runner) decode(opts Options) (*commit.History, error) {
	if opts.Path != "" {
		decls, err := histio.ImportFile(opts.Path)
		if err != nil {
			return nil, err
		}
		return commit.FromDeclarations(decls), nil
	}
	return commit.FromDeclarations(opts.Declarations), nil
}

func (r *Runner) check(hist *commit.History, opts Options) (verdict, error) {
	g, err := dag.FromHistory(hist, opts.policy)
	if err != nil {
		return verdict{}, wrapCheckErr(err)
	}
	return verdict{
		Acyclic: g.Acyclic(),
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	}, nil
}

// cachedVerdict looks up a prior verdict. Cache failures degrade to a miss;
// a broken cache must never break validation.
func (r *Runner) cachedVerdict(ctx context.Context, key string, opts Options) (verdict, bool) {
	if opts.Refresh {
		return verdict{}, false
	}
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("verdict cache read failed", "err", err)
		return verdict{}, false
	}
	if !ok {
		return verdict{}, false
	}
	var v verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return verdict{}, false
	}
	return v, true
}

func (r *Runner) storeVerdict(ctx context.Context, key string, v verdict) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, DefaultCacheTTL); err != nil {
		r.Logger.Debug("verdict cache write failed", "err", err)
	}
}

func wrapCheckErr(err error) error {
	var dangling *dag.DanglingParentError
	if stderrors.As(err, &dangling) {
		return errors.Wrap(errors.ErrCodeDanglingParent, err, "invalid history")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "build graph")
}
