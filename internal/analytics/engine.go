package analytics

import (
	"fmt"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// ItemTrace is the per-item diagnostics trace emitted in debug mode. It is
// derived from the same inputs as the metrics and never alters them.
type ItemTrace struct {
	ItemID      int              `json:"itemId"`
	Transitions []Transition     `json:"transitions"`
	Dev         DevTimeResult    `json:"dev"`
	DevTesting  []CycleDetail    `json:"devTesting,omitempty"`
	StgTesting  []CycleDetail    `json:"stgTesting,omitempty"`
	Returns     []Return         `json:"returns,omitempty"`
	Threads     []ThreadDecision `json:"threads,omitempty"`
}

// ItemResult is the outcome of analyzing a single work item. It is a pure
// function of that item's revisions and PR threads.
type ItemResult struct {
	ItemID   int
	ItemType string
	Assignee string
	Dev      DevTimeResult
	DevTest  TestingResult
	StgTest  TestingResult
	Returns  []Return
	Reviews  ReviewResult
	Trace    *ItemTrace
}

// Engine runs the five analyzers over work items and folds their outputs
// into chunk results. All analysis is synchronous and deterministic; the
// caller owns any fan-out.
type Engine struct {
	vocab Vocabulary
	clock Clock
	debug bool
	log   zerolog.Logger
}

type Option func(*Engine)

// WithDebug turns on per-item diagnostics traces.
func WithDebug(on bool) Option { return func(e *Engine) { e.debug = on } }

func WithLogger(log zerolog.Logger) Option { return func(e *Engine) { e.log = log } }

func New(v Vocabulary, clock Clock, opts ...Option) *Engine {
	e := &Engine{vocab: v, clock: clock, log: zerolog.Nop()}
	for _, o := range opts { o(e) }
	return e
}

// AnalyzeItem runs all analyzers over one work item. Malformed input is
// fatal for the run: there is no partial credit for a broken item.
func (e *Engine) AnalyzeItem(item domain.WorkItem, threads map[string][]domain.Thread) (ItemResult, error) {
	if item.ID <= 0 {
		return ItemResult{}, fmt.Errorf("analytics: work item without id")
	}
	for i, rev := range item.Revisions {
		if rev.State == "" {
			return ItemResult{}, fmt.Errorf("analytics: item %d revision %d has no state", item.ID, i)
		}
		if rev.ChangedDate.IsZero() {
			return ItemResult{}, fmt.Errorf("analytics: item %d revision %d has no changed date", item.ID, i)
		}
	}

	seq := ExtractTransitions(item.Revisions)
	res := ItemResult{
		ItemID:   item.ID,
		ItemType: item.Type,
		Assignee: item.Assignee,
		Dev:      DevelopmentTime(seq, e.vocab, e.clock),
		DevTest:  TestingCycles(seq, TestingParams{Testing: e.vocab.DevTesting, Acceptance: e.vocab.DevAcceptance}, e.clock),
		StgTest:  TestingCycles(seq, TestingParams{Testing: e.vocab.StgTesting, Acceptance: e.vocab.StgAcceptance}, e.clock),
		Returns:  ClassifyReturns(seq, e.vocab),
		Reviews:  AttributeReviews(item.PRLinks, threads),
	}

	if e.debug {
		res.Trace = &ItemTrace{
			ItemID:      item.ID,
			Transitions: seq,
			Dev:         res.Dev,
			DevTesting:  res.DevTest.Cycles,
			StgTesting:  res.StgTest.Cycles,
			Returns:     res.Returns,
			Threads:     res.Reviews.Decisions,
		}
	}
	return res, nil
}

// AnalyzeChunk folds a bounded subset of work items into one chunk result.
// The first malformed item aborts the chunk, and with it the run.
func (e *Engine) AnalyzeChunk(items []domain.WorkItem, threads map[string][]domain.Thread) (*ChunkResult, error) {
	c := NewChunkResult()
	for _, item := range items {
		r, err := e.AnalyzeItem(item, threads)
		if err != nil { return nil, err }
		c.Fold(r)
	}
	e.log.Debug().Int("items", len(items)).Int("developers", len(c.Developers)).Msg("chunk folded")
	return c, nil
}

// Chunk partitions items into fixed-size chunks. The partition size never
// affects the merged report.
func Chunk(items []domain.WorkItem, size int) [][]domain.WorkItem {
	if size <= 0 { size = len(items) }
	var out [][]domain.WorkItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) { end = len(items) }
		out = append(out, items[start:end])
	}
	return out
}
