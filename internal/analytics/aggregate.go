package analytics

import (
	"sort"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

// UnassignedName keys metrics for items with no resolvable assignee.
const UnassignedName = "Unassigned"

// DeveloperAggregate accumulates one developer's metrics across items.
// All fields are purely additive so chunk folding is order-independent.
type DeveloperAggregate struct {
	Name              string  `json:"name"`
	DevHours          float64 `json:"devTimeHours"`
	DevCycles         int     `json:"devCycles"`
	CompletedItems    int     `json:"completedItems"`
	CodeReviewReturns int     `json:"codeReviewReturns"`
	DevTestingReturns int     `json:"devTestingReturns"`
	StgTestingReturns int     `json:"stgTestingReturns"`
	Items             []int   `json:"workItems"`
}

// TesterAggregate accumulates one tester's metrics across both stages.
type TesterAggregate struct {
	Name              string  `json:"name"`
	DevTestHours      float64 `json:"devTestHours"`
	DevTestCycles     int     `json:"devTestCycles"`
	DevTestIterations int     `json:"devTestIterations"`
	StgTestHours      float64 `json:"stgTestHours"`
	StgTestCycles     int     `json:"stgTestCycles"`
	StgTestIterations int     `json:"stgTestIterations"`
	TestedItems       int     `json:"testedItems"`
	Items             []int   `json:"workItems"`
}

// ReviewerAggregate accumulates one author's counted PR comments.
type ReviewerAggregate struct {
	Name         string `json:"name"`
	Comments     int    `json:"comments"`
	PullRequests int    `json:"pullRequests"`
	Items        []int  `json:"workItems"`
}

// Totals carries the additive sums a chunk contributes to the summary.
// Averages are derived only at final merge so the fold stays associative.
type Totals struct {
	WorkItems       int     `json:"workItems"`
	Requirements    int     `json:"requirements"`
	Bugs            int     `json:"bugs"`
	Tasks           int     `json:"tasks"`
	DevHoursSum     float64 `json:"devHoursSum"`
	DevItems        int     `json:"devItems"`
	DevTestHoursSum float64 `json:"devTestHoursSum"`
	DevTestItems    int     `json:"devTestItems"`
	StgTestHoursSum float64 `json:"stgTestHoursSum"`
	StgTestItems    int     `json:"stgTestItems"`
	Returns         int     `json:"returns"`
	PRComments      int     `json:"prComments"`
}

func (t *Totals) add(o Totals) {
	t.WorkItems += o.WorkItems
	t.Requirements += o.Requirements
	t.Bugs += o.Bugs
	t.Tasks += o.Tasks
	t.DevHoursSum += o.DevHoursSum
	t.DevItems += o.DevItems
	t.DevTestHoursSum += o.DevTestHoursSum
	t.DevTestItems += o.DevTestItems
	t.StgTestHoursSum += o.StgTestHoursSum
	t.StgTestItems += o.StgTestItems
	t.Returns += o.Returns
	t.PRComments += o.PRComments
}

// ChunkResult is the aggregate over one bounded subset of work items. It
// holds no cross-chunk references: merging N chunk results in any order
// or partition yields the same final report.
type ChunkResult struct {
	Developers map[string]*DeveloperAggregate `json:"developers"`
	Testers    map[string]*TesterAggregate    `json:"testers"`
	Reviewers  map[string]*ReviewerAggregate  `json:"reviewers"`
	Totals     Totals                         `json:"totals"`
	Unassigned []int                          `json:"unassignedItems,omitempty"`
	Traces     map[int]*ItemTrace             `json:"traces,omitempty"`
}

func NewChunkResult() *ChunkResult {
	return &ChunkResult{
		Developers: map[string]*DeveloperAggregate{},
		Testers:    map[string]*TesterAggregate{},
		Reviewers:  map[string]*ReviewerAggregate{},
	}
}

func (c *ChunkResult) developer(name string) *DeveloperAggregate {
	d := c.Developers[name]
	if d == nil { d = &DeveloperAggregate{Name: name}; c.Developers[name] = d }
	return d
}

func (c *ChunkResult) tester(name string) *TesterAggregate {
	t := c.Testers[name]
	if t == nil { t = &TesterAggregate{Name: name}; c.Testers[name] = t }
	return t
}

func (c *ChunkResult) reviewer(name string) *ReviewerAggregate {
	r := c.Reviewers[name]
	if r == nil { r = &ReviewerAggregate{Name: name}; c.Reviewers[name] = r }
	return r
}

// Fold adds one item's analysis into the chunk. Numeric fields sum and
// list fields append; nothing depends on the order items arrive in.
func (c *ChunkResult) Fold(r ItemResult) {
	assignee := r.Assignee
	if assignee == "" {
		assignee = UnassignedName
		c.Unassigned = append(c.Unassigned, r.ItemID)
	}

	c.Totals.WorkItems++
	switch r.ItemType {
	case domain.TypeRequirement:
		c.Totals.Requirements++
	case domain.TypeBug:
		c.Totals.Bugs++
	case domain.TypeTask:
		c.Totals.Tasks++
	}

	d := c.developer(assignee)
	d.Items = append(d.Items, r.ItemID)
	d.DevHours += r.Dev.Hours
	d.DevCycles += r.Dev.Cycles
	if r.Dev.HandedOff { d.CompletedItems++ }
	c.Totals.DevHoursSum += r.Dev.Hours
	if r.Dev.Cycles > 0 { c.Totals.DevItems++ }

	// Returns charge the item's current assignee at report time, not
	// whoever was assigned when the regression happened.
	for _, ret := range r.Returns {
		switch ret.Stage {
		case StageCodeReview:
			d.CodeReviewReturns++
		case StageDevTesting:
			d.DevTestingReturns++
		case StageStgTesting:
			d.StgTestingReturns++
		}
		c.Totals.Returns++
	}

	foldStage := func(stage TestingResult, dev bool) float64 {
		sum := 0.0
		for _, name := range sortedNames(stage.Totals) {
			tt := stage.Totals[name]
			ta := c.tester(name)
			if dev {
				ta.DevTestHours += tt.Hours
				ta.DevTestCycles += tt.Cycles
				ta.DevTestIterations += tt.Iterations
			} else {
				ta.StgTestHours += tt.Hours
				ta.StgTestCycles += tt.Cycles
				ta.StgTestIterations += tt.Iterations
			}
			ta.TestedItems++
			ta.Items = append(ta.Items, r.ItemID)
			sum += tt.Hours
		}
		return sum
	}
	devSum := foldStage(r.DevTest, true)
	stgSum := foldStage(r.StgTest, false)
	c.Totals.DevTestHoursSum += devSum
	if len(r.DevTest.Totals) > 0 { c.Totals.DevTestItems++ }
	c.Totals.StgTestHoursSum += stgSum
	if len(r.StgTest.Totals) > 0 { c.Totals.StgTestItems++ }

	for _, name := range sortedNames(r.Reviews.ByAuthor) {
		n := r.Reviews.ByAuthor[name]
		ra := c.reviewer(name)
		ra.Comments += n
		ra.Items = append(ra.Items, r.ItemID)
		c.Totals.PRComments += n
	}
	for _, pr := range r.Reviews.PRs {
		for _, a := range pr.Authors { c.reviewer(a).PullRequests++ }
	}

	if r.Trace != nil {
		if c.Traces == nil { c.Traces = map[int]*ItemTrace{} }
		c.Traces[r.ItemID] = r.Trace
	}
}

// sortedNames returns map keys in ascending order so float accumulation
// happens in a fixed order regardless of map iteration.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m { names = append(names, n) }
	sort.Strings(names)
	return names
}

// Summary is the derived numeric overview of a final report.
type Summary struct {
	TotalWorkItems      int     `json:"totalWorkItems"`
	TotalRequirements   int     `json:"totalRequirements"`
	TotalBugs           int     `json:"totalBugs"`
	TotalTasks          int     `json:"totalTasks"`
	AvgDevTimeHours     float64 `json:"avgDevTimeHours"`
	AvgDevTestTimeHours float64 `json:"avgDevTestTimeHours"`
	AvgStgTestTimeHours float64 `json:"avgStgTestTimeHours"`
	TotalReturns        int     `json:"totalReturns"`
	TotalPRComments     int     `json:"totalPrComments"`
}

// Series is one ranked chart series: parallel labels and values.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ChartData holds the top-10 ranked series for the dashboard.
type ChartData struct {
	TopDevelopersByCompleted Series `json:"topDevelopersByCompleted"`
	TopTestersByItems        Series `json:"topTestersByItems"`
	TopReviewersByComments   Series `json:"topReviewersByComments"`
}

// Report is the final fold of all chunk results. It is a pure function of
// the set of chunk results, independent of partitioning and order.
type Report struct {
	DeveloperMetrics []DeveloperAggregate `json:"developerMetrics"`
	TesterMetrics    []TesterAggregate    `json:"testerMetrics"`
	PRCommentAuthors []ReviewerAggregate  `json:"prCommentAuthors"`
	Summary          Summary              `json:"summary"`
	ChartData        ChartData            `json:"chartData"`
	UnassignedItems  []int                `json:"unassignedItems"`
	DebugLogs        map[int]*ItemTrace   `json:"debugLogs,omitempty"`
}

const topN = 10

// MergeChunks combines chunk results into the final report using the same
// additive rule as the per-chunk fold, then derives averages and ranked
// series from the final sums only.
func MergeChunks(chunks []*ChunkResult) *Report {
	devs := map[string]*DeveloperAggregate{}
	testers := map[string]*TesterAggregate{}
	reviewers := map[string]*ReviewerAggregate{}
	var totals Totals
	var unassigned []int
	var traces map[int]*ItemTrace

	for _, c := range chunks {
		if c == nil { continue }
		for _, name := range sortedNames(c.Developers) {
			src := c.Developers[name]
			dst := devs[name]
			if dst == nil { dst = &DeveloperAggregate{Name: name}; devs[name] = dst }
			dst.DevHours += src.DevHours
			dst.DevCycles += src.DevCycles
			dst.CompletedItems += src.CompletedItems
			dst.CodeReviewReturns += src.CodeReviewReturns
			dst.DevTestingReturns += src.DevTestingReturns
			dst.StgTestingReturns += src.StgTestingReturns
			dst.Items = append(dst.Items, src.Items...)
		}
		for _, name := range sortedNames(c.Testers) {
			src := c.Testers[name]
			dst := testers[name]
			if dst == nil { dst = &TesterAggregate{Name: name}; testers[name] = dst }
			dst.DevTestHours += src.DevTestHours
			dst.DevTestCycles += src.DevTestCycles
			dst.DevTestIterations += src.DevTestIterations
			dst.StgTestHours += src.StgTestHours
			dst.StgTestCycles += src.StgTestCycles
			dst.StgTestIterations += src.StgTestIterations
			dst.TestedItems += src.TestedItems
			dst.Items = append(dst.Items, src.Items...)
		}
		for _, name := range sortedNames(c.Reviewers) {
			src := c.Reviewers[name]
			dst := reviewers[name]
			if dst == nil { dst = &ReviewerAggregate{Name: name}; reviewers[name] = dst }
			dst.Comments += src.Comments
			dst.PullRequests += src.PullRequests
			dst.Items = append(dst.Items, src.Items...)
		}
		totals.add(c.Totals)
		unassigned = append(unassigned, c.Unassigned...)
		for id, tr := range c.Traces {
			if traces == nil { traces = map[int]*ItemTrace{} }
			traces[id] = tr
		}
	}

	rep := &Report{
		Summary: Summary{
			TotalWorkItems:      totals.WorkItems,
			TotalRequirements:   totals.Requirements,
			TotalBugs:           totals.Bugs,
			TotalTasks:          totals.Tasks,
			AvgDevTimeHours:     avg(totals.DevHoursSum, totals.DevItems),
			AvgDevTestTimeHours: avg(totals.DevTestHoursSum, totals.DevTestItems),
			AvgStgTestTimeHours: avg(totals.StgTestHoursSum, totals.StgTestItems),
			TotalReturns:        totals.Returns,
			TotalPRComments:     totals.PRComments,
		},
		UnassignedItems: sortedInts(unassigned),
		DebugLogs:       traces,
	}

	for _, name := range sortedNames(devs) {
		d := *devs[name]
		d.DevHours = round4(d.DevHours)
		d.Items = sortedInts(d.Items)
		rep.DeveloperMetrics = append(rep.DeveloperMetrics, d)
	}
	sort.SliceStable(rep.DeveloperMetrics, func(i, j int) bool {
		a, b := rep.DeveloperMetrics[i], rep.DeveloperMetrics[j]
		if a.CompletedItems != b.CompletedItems { return a.CompletedItems > b.CompletedItems }
		return a.Name < b.Name
	})

	for _, name := range sortedNames(testers) {
		t := *testers[name]
		t.DevTestHours = round4(t.DevTestHours)
		t.StgTestHours = round4(t.StgTestHours)
		t.Items = sortedInts(t.Items)
		rep.TesterMetrics = append(rep.TesterMetrics, t)
	}
	sort.SliceStable(rep.TesterMetrics, func(i, j int) bool {
		a, b := rep.TesterMetrics[i], rep.TesterMetrics[j]
		if a.TestedItems != b.TestedItems { return a.TestedItems > b.TestedItems }
		return a.Name < b.Name
	})

	for _, name := range sortedNames(reviewers) {
		r := *reviewers[name]
		r.Items = sortedInts(r.Items)
		rep.PRCommentAuthors = append(rep.PRCommentAuthors, r)
	}
	sort.SliceStable(rep.PRCommentAuthors, func(i, j int) bool {
		a, b := rep.PRCommentAuthors[i], rep.PRCommentAuthors[j]
		if a.Comments != b.Comments { return a.Comments > b.Comments }
		return a.Name < b.Name
	})

	rep.Summary.AvgDevTimeHours = round4(rep.Summary.AvgDevTimeHours)
	rep.Summary.AvgDevTestTimeHours = round4(rep.Summary.AvgDevTestTimeHours)
	rep.Summary.AvgStgTestTimeHours = round4(rep.Summary.AvgStgTestTimeHours)

	for i, d := range rep.DeveloperMetrics {
		if i >= topN { break }
		rep.ChartData.TopDevelopersByCompleted.Labels = append(rep.ChartData.TopDevelopersByCompleted.Labels, d.Name)
		rep.ChartData.TopDevelopersByCompleted.Values = append(rep.ChartData.TopDevelopersByCompleted.Values, float64(d.CompletedItems))
	}
	for i, t := range rep.TesterMetrics {
		if i >= topN { break }
		rep.ChartData.TopTestersByItems.Labels = append(rep.ChartData.TopTestersByItems.Labels, t.Name)
		rep.ChartData.TopTestersByItems.Values = append(rep.ChartData.TopTestersByItems.Values, float64(t.TestedItems))
	}
	for i, r := range rep.PRCommentAuthors {
		if i >= topN { break }
		rep.ChartData.TopReviewersByComments.Labels = append(rep.ChartData.TopReviewersByComments.Labels, r.Name)
		rep.ChartData.TopReviewersByComments.Values = append(rep.ChartData.TopReviewersByComments.Values, float64(r.Comments))
	}

	if rep.UnassignedItems == nil { rep.UnassignedItems = []int{} }
	return rep
}

func avg(sum float64, n int) float64 {
	if n == 0 { return 0 }
	return sum / float64(n)
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
