package notfound

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
	"github.com/rs/zerolog"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/singleflight"
)

// Fetcher sends the probe request. Implementations own retries, timeouts
// and redirect policy, and must not serve probes from a cache.
type Fetcher interface {
	Get(ctx context.Context, u *weburl.URL) (*scanner.Response, error)
}

// Reference is a captured not-found response. It is never mutated after
// creation.
type Reference struct {
	Key        Key
	URL        string
	StatusCode int
	DocType    scanner.DocType
	// Body is the cleaned body, produced by Clean with the probe URL.
	Body       string
	RawLength  int
	Hash       uint64
	ProbeID    uuid.UUID
	CapturedAt time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTokenFunc replaces the random name generator used for probe URLs.
func WithTokenFunc(fn TokenFunc) StoreOption {
	return func(s *Store) { s.token = fn }
}

// WithStoreMetrics reports probes and the reference count to m.
func WithStoreMetrics(m *Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithStoreLogger sets the logger for probe events.
func WithStoreLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store caches one Reference per Key. Reads of populated keys take no lock;
// population runs at most once per key at a time and failures are not
// cached.
type Store struct {
	fetcher Fetcher
	token   TokenFunc
	metrics *Metrics
	logger  zerolog.Logger

	gen atomic.Pointer[generation]
}

// generation is the cache of one scan session. Reset swaps it out so that
// populations still running for the old session land in a map nobody reads.
type generation struct {
	refs  sync.Map // Key -> *Reference
	group singleflight.Group
	count atomic.Int64
}

// NewStore returns an empty Store that probes through f.
func NewStore(f Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher: f,
		token:   RandomToken,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gen.Store(&generation{})
	return s
}

// Get returns the reference for key, probing once if none is cached.
// Concurrent callers for the same key share one probe. A caller whose ctx
// ends stops waiting; the probe itself keeps running for the others.
func (s *Store) Get(ctx context.Context, key Key) (*Reference, error) {
	g := s.gen.Load()
	if v, ok := g.refs.Load(key); ok {
		return v.(*Reference), nil
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key.String(), func() (any, error) {
		if v, ok := g.refs.Load(key); ok {
			return v, nil
		}
		ref, err := s.probe(probeCtx, key)
		if err != nil {
			return nil, err
		}
		g.refs.Store(key, ref)
		n := g.count.Add(1)
		if s.gen.Load() == g {
			s.metrics.setReferences(n)
		}
		return ref, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Reference), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Lookup returns the cached reference for key without probing.
func (s *Store) Lookup(key Key) (*Reference, bool) {
	v, ok := s.gen.Load().refs.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*Reference), true
}

// Len returns the number of cached references.
func (s *Store) Len() int {
	return int(s.gen.Load().count.Load())
}

// References returns a snapshot of the cached references ordered by key.
func (s *Store) References() []*Reference {
	var refs []*Reference
	s.gen.Load().refs.Range(func(_, v any) bool {
		refs = append(refs, v.(*Reference))
		return true
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key.String() < refs[j].Key.String() })
	return refs
}

// Reset drops every reference so the next Get probes again.
func (s *Store) Reset() {
	s.gen.Store(&generation{})
	s.metrics.setReferences(0)
}

func (s *Store) probe(ctx context.Context, key Key) (*Reference, error) {
	u, err := key.ProbeURL(s.token(DefaultTokenLength))
	if err != nil {
		return nil, err
	}

	resp, err := s.fetcher.Get(ctx, u)
	if err != nil {
		s.metrics.probe(false)
		s.logger.Debug().Str("key", key.String()).Str("url", u.String()).Err(err).Msg("404 probe failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrProbeFailed, u, err)
	}
	s.metrics.probe(true)

	ref := &Reference{
		Key:        key,
		URL:        u.String(),
		StatusCode: resp.StatusCode,
		DocType:    resp.DocType,
		Body:       Clean(resp.Text(), u, resp.DocType),
		RawLength:  len(resp.Body),
		Hash:       murmur3.Sum64(resp.Body),
		ProbeID:    uuid.New(),
		CapturedAt: time.Now(),
	}
	s.logger.Debug().
		Str("key", key.String()).
		Str("url", ref.URL).
		Int("status", ref.StatusCode).
		Int("length", ref.RawLength).
		Str("probe_id", ref.ProbeID.String()).
		Msg("captured 404 reference")
	return ref, nil
}
