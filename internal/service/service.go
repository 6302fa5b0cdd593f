/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/adapters/azdo"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/analytics"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/repo"
)

// Clock modes accepted in run parameters.
const (
	ClockWall     = "wall"
	ClockCalendar = "calendar"
)

// Concurrent work-item batch requests. Batch size itself comes from the
// rules file; this only bounds how many batches are in flight at once.
const itemBatchWorkers = 4

// Tracker is the work-item side of the Azure DevOps client.
type Tracker interface {
	QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error)
	WorkItems(ctx context.Context, ids []int) ([]azdo.WireWorkItem, error)
	Revisions(ctx context.Context, id int) ([]azdo.WireRevision, error)
}

// Code is the pull-request side of the Azure DevOps client.
type Code interface {
	PullRequestThreads(ctx context.Context, repo string, prID int) ([]azdo.WireThread, error)
}

// RunParams are the caller-supplied parameters of one analysis run.
// Either Query or ItemIDs selects the items; ItemIDs wins when both are set.
type RunParams struct {
	Query   string `json:"query,omitempty"`
	ItemIDs []int  `json:"itemIds,omitempty"`
	Clock   string `json:"clock,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

func (p RunParams) Validate() error {
	if strings.TrimSpace(p.Query) == "" && len(p.ItemIDs) == 0 {
		return errors.New("run: either a query or explicit item ids is required")
	}
	switch p.Clock {
	case "", ClockWall, ClockCalendar:
	default:
		return fmt.Errorf("run: unknown clock mode %q", p.Clock)
	}
	return nil
}

// VocabularyFrom maps the configured state names into the engine's
// vocabulary value.
func VocabularyFrom(r config.Rules) analytics.Vocabulary {
	return analytics.Vocabulary{
		Active:        r.States.Active,
		CodeReview:    r.States.CodeReview,
		FixRequired:   r.States.FixRequired,
		DevTesting:    r.States.DevTesting,
		DevAcceptance: r.States.DevAcceptance,
		StgTesting:    r.States.StgTesting,
		StgAcceptance: r.States.StgAcceptance,
	}
}

// ClockFrom builds the duration clock for a run. The calendar clock is the
// default; "wall" opts into raw elapsed time.
func ClockFrom(r config.Rules, mode string) analytics.Clock {
	if mode == ClockWall { return analytics.WallClock{} }
	c := r.Calendar
	return analytics.NewBusinessClock(c.UTCOffsetHours, c.WorkdayStart, c.WorkdayEnd, c.Holidays)
}

type Service struct {
	cfg     config.Config
	log     zerolog.Logger
	repo    *repo.Repository
	tracker Tracker
	code    Code

	mu    sync.RWMutex
	rules config.Rules
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, tracker Tracker, code Code, rules config.Rules) *Service {
	return &Service{cfg: cfg, log: log, repo: r, tracker: tracker, code: code, rules: rules}
}

// SetRules swaps the process rules. Runs already in flight keep the rules
// they started with.
func (s *Service) SetRules(r config.Rules) {
	s.mu.Lock()
	s.rules = r
	s.mu.Unlock()
	s.log.Info().Msg("process rules updated")
}

func (s *Service) Rules() config.Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// Submit validates the parameters and records a queued job.
func (s *Service) Submit(ctx context.Context, p RunParams) (uuid.UUID, error) {
	if err := p.Validate(); err != nil { return uuid.Nil, err }
	params, err := json.Marshal(p)
	if err != nil { return uuid.Nil, err }
	return s.repo.CreateJob(ctx, params)
}

func (s *Service) Job(ctx context.Context, id uuid.UUID) (*repo.Job, error) { return s.repo.GetJob(ctx, id) }

func (s *Service) Report(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	return s.repo.GetReport(ctx, id)
}

// Run executes one analysis job end to end: fetch, analyze chunk by chunk,
// merge, persist. Any fetch or input error fails the whole job; there are
// no partial reports.
func (s *Service) Run(ctx context.Context, jobID uuid.UUID, p RunParams) {
	rules := s.Rules()
	if err := s.run(ctx, jobID, p, rules); err != nil {
		s.log.Error().Err(err).Str("job", jobID.String()).Msg("analysis run failed")
		if ferr := s.repo.FailJob(context.WithoutCancel(ctx), jobID, err.Error()); ferr != nil {
			s.log.Error().Err(ferr).Str("job", jobID.String()).Msg("failed to mark job failed")
		}
	}
}

func (s *Service) run(ctx context.Context, jobID uuid.UUID, p RunParams, rules config.Rules) error {
	ids := p.ItemIDs
	if len(ids) == 0 {
		var err error
		ids, err = s.tracker.QueryWorkItemIDs(ctx, p.Query)
		if err != nil { return fmt.Errorf("query work items: %w", err) }
	}
	if len(ids) == 0 { return errors.New("run: query matched no work items") }

	items, err := s.fetchItems(ctx, ids, rules.Limits)
	if err != nil { return err }
	threads, err := s.fetchThreads(ctx, items, rules.Limits)
	if err != nil { return err }

	eng := analytics.New(VocabularyFrom(rules), ClockFrom(rules, p.Clock), analytics.WithDebug(p.Debug), analytics.WithLogger(s.log))
	chunks := analytics.Chunk(items, rules.Limits.ChunkSize)
	if err := s.repo.MarkRunning(ctx, jobID, len(chunks)); err != nil { return err }

	for i, chunk := range chunks {
		res, err := eng.AnalyzeChunk(chunk, threads)
		if err != nil { return err }
		payload, err := json.Marshal(res)
		if err != nil { return err }
		if err := s.repo.SaveChunk(ctx, jobID, i, payload); err != nil { return err }
	}

	// The report is merged from the persisted chunk payloads, so what the
	// operator saw accumulate is exactly what the report is built from.
	payloads, err := s.repo.ChunkPayloads(ctx, jobID)
	if err != nil { return err }
	parts := make([]*analytics.ChunkResult, 0, len(payloads))
	for _, raw := range payloads {
		c := &analytics.ChunkResult{}
		if err := json.Unmarshal(raw, c); err != nil { return fmt.Errorf("decode chunk result: %w", err) }
		parts = append(parts, c)
	}
	report, err := json.Marshal(analytics.MergeChunks(parts))
	if err != nil { return err }
	if err := s.repo.SaveReport(ctx, jobID, report); err != nil { return err }
	s.log.Info().Str("job", jobID.String()).Int("items", len(items)).Int("chunks", len(chunks)).Msg("analysis run done")
	return nil
}

// fetchItems pulls work items in bounded batches, then their revision
// histories through a second bounded pool, and maps everything to domain
// records. The first error cancels the remaining fetches.
func (s *Service) fetchItems(ctx context.Context, ids []int, limits config.Limits) ([]domain.WorkItem, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := batchInts(ids, limits.ItemBatchSize)
	type batchResult struct {
		items []azdo.WireWorkItem
		err   error
	}
	batchJobs := make(chan []int)
	batchResults := make(chan batchResult)
	workers := itemBatchWorkers
	if workers > len(batches) { workers = len(batches) }
	for w := 0; w < workers; w++ {
		go func() {
			for b := range batchJobs {
				wi, err := s.tracker.WorkItems(ctx, b)
				batchResults <- batchResult{items: wi, err: err}
			}
		}()
	}
	go func() { for _, b := range batches { batchJobs <- b }; close(batchJobs) }()
	var wire []azdo.WireWorkItem
	var firstErr error
	for range batches {
		r := <-batchResults
		if r.err != nil && firstErr == nil { firstErr = fmt.Errorf("fetch work items: %w", r.err); cancel() }
		if r.err == nil { wire = append(wire, r.items...) }
	}
	if firstErr != nil { return nil, firstErr }

	type itemResult struct {
		item    domain.WorkItem
		skipped []string
		err     error
	}
	itemJobs := make(chan azdo.WireWorkItem)
	itemResults := make(chan itemResult)
	workers = limits.RevisionWorkers
	if workers > len(wire) { workers = len(wire) }
	for w := 0; w < workers; w++ {
		go func() {
			for wi := range itemJobs {
				revs, err := s.tracker.Revisions(ctx, wi.ID)
				if err != nil {
					itemResults <- itemResult{err: fmt.Errorf("fetch revisions for item %d: %w", wi.ID, err)}
					continue
				}
				item, skipped, err := azdo.ToWorkItem(wi, revs)
				itemResults <- itemResult{item: item, skipped: skipped, err: err}
			}
		}()
	}
	go func() { for _, wi := range wire { itemJobs <- wi }; close(itemJobs) }()
	items := make([]domain.WorkItem, 0, len(wire))
	for range wire {
		r := <-itemResults
		if r.err != nil && firstErr == nil { firstErr = r.err; cancel() }
		if r.err != nil { continue }
		for _, u := range r.skipped {
			s.log.Warn().Int("item", r.item.ID).Str("url", u).Msg("unresolvable pull request link skipped")
		}
		items = append(items, r.item)
	}
	if firstErr != nil { return nil, firstErr }

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// fetchThreads resolves the distinct pull requests referenced by the items
// and pulls their comment threads through a bounded pool.
func (s *Service) fetchThreads(ctx context.Context, items []domain.WorkItem, limits config.Limits) (map[string][]domain.Thread, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seen := map[string]domain.PRLink{}
	for _, it := range items {
		for _, l := range it.PRLinks { seen[analytics.ThreadKey(l.Repo, l.PRID)] = l }
	}
	links := make([]domain.PRLink, 0, len(seen))
	for _, l := range seen { links = append(links, l) }

	type threadResult struct {
		key     string
		threads []domain.Thread
		err     error
	}
	jobs := make(chan domain.PRLink)
	results := make(chan threadResult)
	workers := limits.ThreadWorkers
	if workers > len(links) { workers = len(links) }
	for w := 0; w < workers; w++ {
		go func() {
			for l := range jobs {
				th, err := s.code.PullRequestThreads(ctx, l.Repo, l.PRID)
				if err != nil {
					results <- threadResult{err: fmt.Errorf("fetch threads for %s/%d: %w", l.Repo, l.PRID, err)}
					continue
				}
				results <- threadResult{key: analytics.ThreadKey(l.Repo, l.PRID), threads: azdo.ToThreads(th)}
			}
		}()
	}
	go func() { for _, l := range links { jobs <- l }; close(jobs) }()
	out := make(map[string][]domain.Thread, len(links))
	var firstErr error
	for range links {
		r := <-results
		if r.err != nil && firstErr == nil { firstErr = r.err; cancel() }
		if r.err == nil { out[r.key] = r.threads }
	}
	if firstErr != nil { return nil, firstErr }
	return out, nil
}

// CleanupFinished deletes done and failed jobs older than the retention
// window. Called from the cron under an advisory lock.
func (s *Service) CleanupFinished(ctx context.Context) error {
	cutoff := timeNow().Add(-s.cfg.JobRetention)
	n, err := s.repo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil { return err }
	if n > 0 { s.log.Info().Int64("jobs", n).Msg("retention cleanup removed finished jobs") }
	return nil
}

// Swapped in tests to pin the retention cutoff.
var timeNow = time.Now

func batchInts(ids []int, size int) [][]int {
	if size <= 0 { size = len(ids) }
	var out [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) { end = len(ids) }
		out = append(out, ids[start:end])
	}
	return out
}
