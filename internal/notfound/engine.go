package notfound

import (
	"context"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
	"github.com/rs/zerolog"
	"github.com/spaolacci/murmur3"
)

// DefaultNotFoundCodes are the status codes that allow the status fast path.
var DefaultNotFoundCodes = []int{404, 410}

// DefaultDecisionCacheSize is how many per-URI decisions an Engine keeps.
const DefaultDecisionCacheSize = 250

// Decision is the full outcome of one classification.
type Decision struct {
	Is404      bool
	Stage      Stage
	Similarity float64
	Key        Key
	// Reference is the reference that matched, or the last one compared.
	Reference *Reference
}

// Option configures an Engine.
type Option func(*Engine)

// WithRatio sets the fuzzy similarity threshold, in (0, 1].
func WithRatio(r float64) Option {
	return func(e *Engine) { e.ratio = r }
}

// WithMaxFuzzyLength caps the bytes compared by the similarity step.
func WithMaxFuzzyLength(n int) Option {
	return func(e *Engine) { e.maxLength = n }
}

// WithMatcher replaces the fuzzy comparator.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithNotFoundCodes replaces the status codes eligible for the status
// fast path.
func WithNotFoundCodes(codes ...int) Option {
	return func(e *Engine) { e.notFoundCodes = slices.Clone(codes) }
}

// WithSplitByExtension keeps a separate reference per file extension inside
// a directory. Candidates then match either their extension's reference or
// the directory's generic one.
func WithSplitByExtension(on bool) Option {
	return func(e *Engine) { e.splitByExtension = on }
}

// WithAlways404 lists directories whose pages are always reported as 404.
func WithAlways404(dirs ...string) Option {
	return func(e *Engine) { e.always404Raw = append(e.always404Raw, dirs...) }
}

// WithNever404 lists directories whose pages are never reported as 404.
func WithNever404(dirs ...string) Option {
	return func(e *Engine) { e.never404Raw = append(e.never404Raw, dirs...) }
}

// WithStringMatch404 reports every text body containing marker as 404.
func WithStringMatch404(marker string) Option {
	return func(e *Engine) { e.stringMatch = marker }
}

// WithDecisionCacheSize bounds the per-URI decision cache. Zero disables it.
func WithDecisionCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// WithMetrics reports decisions and comparisons to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger used for per-decision debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine decides whether responses are 404 pages. It is safe for concurrent
// use; all shared state lives in its Store.
type Engine struct {
	store *Store

	ratio            float64
	maxLength        int
	matcher          Matcher
	notFoundCodes    []int
	splitByExtension bool
	stringMatch      string
	metrics          *Metrics
	logger           zerolog.Logger

	cacheSize int
	decisions *lru.Cache[string, Decision]

	always404Raw, never404Raw []string
	always404, never404       map[string]struct{}
}

// New builds an Engine on top of store.
func New(store *Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("notfound: nil store")
	}
	e := &Engine{
		store:         store,
		ratio:         DefaultRatio,
		maxLength:     DefaultMaxLength,
		notFoundCodes: DefaultNotFoundCodes,
		logger:        zerolog.Nop(),
		cacheSize:     DefaultDecisionCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ratio <= 0 || e.ratio > 1 {
		return nil, fmt.Errorf("notfound: ratio %v outside (0, 1]", e.ratio)
	}
	if e.matcher == nil {
		e.matcher = NewComparator(e.ratio, e.maxLength)
	}
	if e.cacheSize < 0 {
		return nil, fmt.Errorf("notfound: negative decision cache size %d", e.cacheSize)
	}
	if e.cacheSize > 0 {
		cache, err := lru.New[string, Decision](e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("notfound: decision cache: %w", err)
		}
		e.decisions = cache
	}

	var err error
	if e.always404, err = directorySet(e.always404Raw); err != nil {
		return nil, fmt.Errorf("always 404 list: %w", err)
	}
	if e.never404, err = directorySet(e.never404Raw); err != nil {
		return nil, fmt.Errorf("never 404 list: %w", err)
	}
	return e, nil
}

// directorySet normalizes each entry to its directory URL.
func directorySet(raw []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		u, err := weburl.Parse(r)
		if err != nil {
			return nil, err
		}
		set[u.DomainPath().String()] = struct{}{}
	}
	return set, nil
}

// Store returns the engine's reference store.
func (e *Engine) Store() *Store { return e.store }

// Reset drops all cached references and decisions.
func (e *Engine) Reset() {
	e.store.Reset()
	if e.decisions != nil {
		e.decisions.Purge()
	}
}

// Is404 reports whether resp is a "not found" page. Errors are
// *DetectionError values; the caller chooses the fallback.
func (e *Engine) Is404(ctx context.Context, resp *scanner.Response) (bool, error) {
	d, err := e.Classify(ctx, resp)
	if err != nil {
		return false, err
	}
	return d.Is404, nil
}

// Classify is Is404 with the deciding stage and similarity attached.
// Decisions are remembered per URI, so a URI seen again, for example under
// another method, is answered without comparing. Failures are not cached.
func (e *Engine) Classify(ctx context.Context, resp *scanner.Response) (Decision, error) {
	if resp == nil || resp.URL == nil {
		return Decision{}, &DetectionError{Err: fmt.Errorf("%w: response without URL", ErrMalformedInput)}
	}
	uri := resp.URL.String()
	if e.decisions != nil {
		if d, ok := e.decisions.Get(uri); ok {
			e.metrics.decision(d.Is404, d.Stage)
			return d, nil
		}
	}

	d, err := e.classify(ctx, resp)
	if err != nil {
		return d, err
	}
	if e.decisions != nil {
		e.decisions.Add(uri, d)
	}
	return d, nil
}

func (e *Engine) classify(ctx context.Context, resp *scanner.Response) (Decision, error) {
	u := resp.URL

	if d, ok := e.userOverride(u, resp); ok {
		d.Key = KeyFor(u, e.splitByExtension)
		e.record(u, d)
		return d, nil
	}

	key := KeyFor(u, e.splitByExtension)
	refs, err := e.references(ctx, key)
	if err != nil {
		return Decision{Key: key}, &DetectionError{
			Key: key,
			URL: u.String(),
			Err: fmt.Errorf("%w: %w", ErrReferenceUnavailable, err),
		}
	}

	d := Decision{Key: key, Stage: StageDocType}
	var (
		hash      uint64
		hashed    bool
		candidate string
		cleaned   bool
	)
	for _, ref := range refs {
		if ref.DocType != resp.DocType {
			continue
		}
		d.Reference = ref

		if slices.Contains(e.notFoundCodes, resp.StatusCode) && ref.StatusCode == resp.StatusCode &&
			!lengthDiverges(len(resp.Body), ref.RawLength, e.ratio) {
			d.Is404, d.Stage, d.Similarity = true, StageNotFoundStatus, 0
			break
		}

		if len(resp.Body) == ref.RawLength {
			if !hashed {
				hash, hashed = murmur3.Sum64(resp.Body), true
			}
			if hash == ref.Hash {
				d.Is404, d.Stage, d.Similarity = true, StageHash, 1
				break
			}
		}

		if !cleaned {
			candidate, cleaned = Clean(resp.Text(), u, resp.DocType), true
		}
		v := e.matcher.Decide(candidate, ref.Body)
		e.metrics.comparison(v.Stage)
		d.Stage, d.Similarity = v.Stage, v.Similarity
		if v.Equal {
			d.Is404 = true
			break
		}
	}

	e.record(u, d)
	return d, nil
}

// userOverride applies the configured always/never lists and the marker
// string, in that order.
func (e *Engine) userOverride(u *weburl.URL, resp *scanner.Response) (Decision, bool) {
	dir := u.DomainPath().String()
	if _, ok := e.always404[dir]; ok {
		return Decision{Is404: true, Stage: StageAlways404}, true
	}
	if _, ok := e.never404[dir]; ok {
		return Decision{Stage: StageNever404}, true
	}
	if e.stringMatch != "" && resp.DocType == scanner.DocTypeTextOrHTML &&
		strings.Contains(resp.Text(), e.stringMatch) {
		return Decision{Is404: true, Stage: StageStringMatch}, true
	}
	return Decision{}, false
}

// references returns every reference a candidate under key is compared
// against, most specific first.
func (e *Engine) references(ctx context.Context, key Key) ([]*Reference, error) {
	keys := []Key{key}
	if key.Extension != "" {
		keys = append(keys, key.generic())
	}
	refs := make([]*Reference, 0, len(keys))
	for _, k := range keys {
		ref, err := e.store.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (e *Engine) record(u *weburl.URL, d Decision) {
	e.metrics.decision(d.Is404, d.Stage)
	e.logger.Debug().
		Str("url", u.String()).
		Str("key", d.Key.String()).
		Bool("is_404", d.Is404).
		Str("stage", string(d.Stage)).
		Float64("similarity", d.Similarity).
		Msg("404 decision")
}
