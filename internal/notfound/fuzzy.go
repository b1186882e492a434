package notfound

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultRatio is the similarity above which two cleaned bodies are the
	// same document.
	DefaultRatio = 0.90

	// DefaultMaxLength caps how many bytes of each body take part in the
	// similarity step.
	DefaultMaxLength = 32 * 1024
)

// Stage names the check that produced a decision.
type Stage string

const (
	StageIdentical      Stage = "identical"
	StageEmpty          Stage = "empty"
	StageLength         Stage = "length"
	StageSimilarity     Stage = "similarity"
	StageNotFoundStatus Stage = "not_found_status"
	StageHash           Stage = "hash"
	StageAlways404      Stage = "always_404"
	StageNever404       Stage = "never_404"
	StageStringMatch    Stage = "string_match"
	StageDocType        Stage = "doc_type"
)

// Verdict is the outcome of comparing two cleaned bodies.
type Verdict struct {
	Equal      bool
	Stage      Stage
	Similarity float64
}

// Matcher compares two cleaned bodies.
type Matcher interface {
	Decide(a, b string) Verdict
}

// Comparator is a fuzzy equality test tuned for crawl volume: cheap length
// checks first, then a single chunk-level sequence similarity over
// truncated input. The zero value uses the defaults.
type Comparator struct {
	// Ratio in (0, 1]. 1 means byte equality only.
	Ratio float64
	// MaxLength in bytes; applied to both inputs before the similarity step.
	MaxLength int
}

// NewComparator returns a Comparator with the given ratio and max length.
// Non-positive values fall back to the defaults.
func NewComparator(ratio float64, maxLength int) Comparator {
	return Comparator{Ratio: ratio, MaxLength: maxLength}
}

// Equal reports whether a and b are effectively the same document.
func (c Comparator) Equal(a, b string) bool {
	return c.Decide(a, b).Equal
}

// Decide compares a and b and reports which stage decided. The result does
// not depend on argument order.
func (c Comparator) Decide(a, b string) Verdict {
	ratio := c.ratio()

	if a == b {
		return Verdict{Equal: true, Stage: StageIdentical, Similarity: 1}
	}
	if len(a) == 0 || len(b) == 0 {
		return Verdict{Stage: StageEmpty}
	}
	if ratio >= 1 {
		return Verdict{Stage: StageIdentical}
	}
	if lengthDiverges(len(a), len(b), ratio) {
		return Verdict{Stage: StageLength}
	}

	maxLen := c.maxLength()
	if len(a) > maxLen {
		a = a[:maxLen]
	}
	if len(b) > maxLen {
		b = b[:maxLen]
	}
	// Truncation can make the inputs equal.
	if a == b {
		return Verdict{Equal: true, Stage: StageSimilarity, Similarity: 1}
	}

	if a > b {
		a, b = b, a
	}
	sim := similarity(a, b)
	return Verdict{Equal: sim >= ratio, Stage: StageSimilarity, Similarity: sim}
}

func (c Comparator) ratio() float64 {
	if c.Ratio <= 0 || math.IsNaN(c.Ratio) {
		return DefaultRatio
	}
	return c.Ratio
}

func (c Comparator) maxLength() int {
	if c.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return c.MaxLength
}

// lengthDiverges reports whether the size difference alone exceeds the
// tolerance implied by ratio.
func lengthDiverges(la, lb int, ratio float64) bool {
	longer, shorter := la, lb
	if shorter > longer {
		longer, shorter = shorter, longer
	}
	if longer == 0 {
		return false
	}
	return float64(longer-shorter)/float64(longer) > 1-ratio
}

// chunk splits s after every run of whitespace and around markup so that a
// changed word or attribute only disturbs its own chunk. The pieces share
// s's memory.
func chunk(s string) []string {
	var out []string
	start := 0
	emit := func(end int) {
		if end > start {
			out = append(out, s[start:end])
			start = end
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			emit(i)
		case '>', ' ', '\t', '\n', '\r':
			// Let a whitespace run stay with the token before it.
			if s[i] == '>' || i+1 == len(s) || !isSpace(s[i+1]) {
				emit(i + 1)
			}
		}
	}
	emit(len(s))
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// similarity is the Ratcliff/Obershelp ratio 2*M/T over chunk sequences,
// where M is the byte weight of all matching blocks and T the combined
// byte length of both inputs. Chunks making up more than 1% of a b sequence
// of 200 or more chunks do not seed matches (difflib autojunk).
func similarity(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	ca := chunk(a)
	m := difflib.NewMatcher(ca, chunk(b))
	matched := 0
	for _, blk := range m.GetMatchingBlocks() {
		for _, piece := range ca[blk.A : blk.A+blk.Size] {
			matched += len(piece)
		}
	}
	return 2 * float64(matched) / float64(total)
}
