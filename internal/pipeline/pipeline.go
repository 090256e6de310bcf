// Package pipeline is the incremental host around extraction and
// synthesis. It caches the last snapshot and contract per type identity
// and only re-synthesizes when a new snapshot differs by value.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/generator"
	"github.com/toyz/autoiface/internal/logger"
	"github.com/toyz/autoiface/internal/models"
	"github.com/toyz/autoiface/internal/snapshot"
)

const (
	// DefaultCacheSize bounds the number of identities kept in memory
	DefaultCacheSize = 4096
	// DefaultConcurrency bounds ProcessAll fan-out
	DefaultConcurrency = 8
)

// Identity names one type across runs: namespace, name and arity
type Identity string

// IdentityOf returns the identity of a declaration, e.g. "App.Repo`2"
func IdentityOf(decl models.TypeDeclaration) Identity {
	name := decl.Name
	if ns := snapshot.NamespacePath(decl.Namespaces); ns != "" {
		name = ns + "." + name
	}
	return Identity(fmt.Sprintf("%s`%d", name, decl.Arity()))
}

// SynthesizeFunc renders a contract from a snapshot
type SynthesizeFunc func(snapshot.Snapshot, generator.Options) (models.Contract, error)

// Entry is the cached pair for one identity. Entries are replaced as a unit.
type Entry struct {
	Snapshot    snapshot.Snapshot
	Fingerprint uint64
	Contract    models.Contract
}

// Result is the outcome of processing one identity
type Result struct {
	Identity    Identity
	Snapshot    snapshot.Snapshot
	Contract    models.Contract
	Changed     bool // false when the cached contract was reused
	Location    models.SourceLocation
	Diagnostics []models.Diagnostic
}

// Stats counts cache activity since the pipeline was created
type Stats struct {
	Hits       int
	Misses     int
	Syntheses  int
	Identities int
}

// Config configures a Pipeline
type Config struct {
	CacheSize   int
	Concurrency int
	Options     generator.Options
	Synthesize  SynthesizeFunc // defaults to generator.Synthesize
	Logger      *zap.SugaredLogger
}

// Pipeline caches snapshots and contracts by identity. It is safe for
// concurrent use.
type Pipeline struct {
	mu          sync.Mutex
	cache       *lru.Cache[Identity, Entry]
	opts        generator.Options
	concurrency int
	synthesize  SynthesizeFunc
	log         *zap.SugaredLogger
	stats       Stats
}

// New creates a pipeline
func New(cfg Config) (*Pipeline, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[Identity, Entry](size)
	if err != nil {
		return nil, errors.WrapConfigurationError("pipeline.cache_size", "create cache for", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	synth := cfg.Synthesize
	if synth == nil {
		synth = generator.Synthesize
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("pipeline")
	}

	return &Pipeline{
		cache:       cache,
		opts:        cfg.Options,
		concurrency: concurrency,
		synthesize:  synth,
		log:         log,
	}, nil
}

// Process extracts the snapshot of one declaration and returns its
// contract, synthesizing only when the snapshot changed since the last
// call for the same identity.
func (p *Pipeline) Process(decl models.TypeDeclaration) (Result, error) {
	id := IdentityOf(decl)
	snap := snapshot.Extract(decl)
	fp := snap.Fingerprint()

	res := Result{Identity: id, Snapshot: snap, Location: decl.Location}

	p.mu.Lock()
	cached, ok := p.cache.Get(id)
	if ok && cached.Fingerprint == fp && cached.Snapshot.Equal(snap) {
		p.stats.Hits++
		p.mu.Unlock()
		p.log.Debugw("snapshot unchanged", "identity", id, "fingerprint", fmt.Sprintf("%016x", fp))
		res.Contract = cached.Contract
		return res, nil
	}
	p.stats.Misses++
	p.mu.Unlock()

	contract, err := p.synthesize(snap, p.opts)
	if err != nil {
		return res, errors.WrapGenerateError(string(id), err).WithLocation(decl.Location)
	}

	p.mu.Lock()
	p.stats.Syntheses++
	p.cache.Add(id, Entry{Snapshot: snap, Fingerprint: fp, Contract: contract})
	p.mu.Unlock()

	p.log.Debugw("contract synthesized",
		"identity", id,
		"file", contract.FileName,
		"members", len(snap.Members),
		"fingerprint", fmt.Sprintf("%016x", fp))

	res.Contract = contract
	res.Changed = true
	return res, nil
}

// ProcessAll groups declarations by identity, merges partial parts and
// processes every identity that carries a marker. Results keep the order
// in which identities first appear. Cancellation is checked between
// identities.
func (p *Pipeline) ProcessAll(ctx context.Context, decls []models.TypeDeclaration) ([]Result, error) {
	groups := GroupByIdentity(decls)

	results := make([]Result, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			merged, diags := snapshot.MergeDeclarations(group.Parts)
			res, err := p.Process(merged)
			if err != nil {
				return err
			}
			res.Diagnostics = diags
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Group is the set of partial declarations of one identity
type Group struct {
	Identity Identity
	Parts    []models.TypeDeclaration
}

// GroupByIdentity collects declarations by identity in first-appearance order and
// drops identities where no part carries a marker
func GroupByIdentity(decls []models.TypeDeclaration) []Group {
	index := make(map[Identity]int)
	var groups []Group
	for _, d := range decls {
		id := IdentityOf(d)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Identity: id})
		}
		groups[i].Parts = append(groups[i].Parts, d)
	}

	out := groups[:0]
	for _, g := range groups {
		for _, part := range g.Parts {
			if part.Marker != nil {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// Lookup returns the cached entry of an identity
func (p *Pipeline) Lookup(id Identity) (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Peek(id)
}

// Forget drops the cached entry of an identity
func (p *Pipeline) Forget(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Remove(id)
}

// Stats returns a copy of the cache counters
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Identities = p.cache.Len()
	return s
}
