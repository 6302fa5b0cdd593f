package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

// CommentTypeText is the thread-opening comment type that counts as a
// genuine review comment. Anything else (system/status comments) is noise.
const CommentTypeText = "text"

// PRReview summarizes counted review activity on one pull request.
type PRReview struct {
	PRID     int      `json:"prId"`
	Repo     string   `json:"repo"`
	Comments int      `json:"comments"`
	Authors  []string `json:"authors"`
}

// ThreadDecision records, for diagnostics, why a thread was or was not
// counted.
type ThreadDecision struct {
	PR      string `json:"pr"`
	Thread  int    `json:"thread"`
	Counted bool   `json:"counted"`
	Author  string `json:"author,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ReviewResult is the per-item output of review attribution.
type ReviewResult struct {
	ByAuthor  map[string]int   `json:"byAuthor"`
	PRs       []PRReview       `json:"prs,omitempty"`
	Decisions []ThreadDecision `json:"decisions,omitempty"`
}

// ThreadKey identifies a pull request inside a fetched thread set.
func ThreadKey(repo string, prID int) string { return fmt.Sprintf("%s/%d", repo, prID) }

// AttributeReviews maps a work item's pull-request comment threads to
// reviewing authors. Only the first comment of each thread is inspected:
// a text comment attributes one count to its author, anything else is
// excluded. Pull requests whose threads could not be fetched are skipped
// without failing the item.
func AttributeReviews(links []domain.PRLink, threads map[string][]domain.Thread) ReviewResult {
	res := ReviewResult{ByAuthor: map[string]int{}}
	seen := map[string]struct{}{}
	for _, l := range links {
		key := ThreadKey(l.Repo, l.PRID)
		if _, dup := seen[key]; dup { continue }
		seen[key] = struct{}{}
		ths, ok := threads[key]
		if !ok {
			res.Decisions = append(res.Decisions, ThreadDecision{
				PR: key, Thread: -1, Counted: false, Reason: "pull request threads unavailable",
			})
			continue
		}
		pr := PRReview{PRID: l.PRID, Repo: l.Repo}
		authors := map[string]struct{}{}
		for i, th := range ths {
			if len(th.Comments) == 0 {
				res.Decisions = append(res.Decisions, ThreadDecision{
					PR: key, Thread: i, Counted: false, Reason: "empty thread",
				})
				continue
			}
			first := th.Comments[0]
			if !strings.EqualFold(first.CommentType, CommentTypeText) {
				res.Decisions = append(res.Decisions, ThreadDecision{
					PR: key, Thread: i, Counted: false,
					Reason: fmt.Sprintf("first comment type %q is not text", first.CommentType),
				})
				continue
			}
			author := strings.TrimSpace(first.Author)
			if author == "" { author = "Unknown" }
			res.ByAuthor[author]++
			pr.Comments++
			authors[author] = struct{}{}
			res.Decisions = append(res.Decisions, ThreadDecision{
				PR: key, Thread: i, Counted: true, Author: author,
			})
		}
		if pr.Comments > 0 {
			pr.Authors = make([]string, 0, len(authors))
			for a := range authors { pr.Authors = append(pr.Authors, a) }
			sort.Strings(pr.Authors)
			res.PRs = append(res.PRs, pr)
		}
	}
	return res
}
