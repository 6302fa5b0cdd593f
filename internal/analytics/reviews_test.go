package analytics

import (
	"strings"
	"testing"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

func textThread(author string) domain.Thread {
	return domain.Thread{Comments: []domain.Comment{{Author: author, CommentType: "text"}}}
}

func TestAttributeReviews_CountsFirstTextComment(t *testing.T) {
	links := []domain.PRLink{{Repo: "core", PRID: 7}}
	threads := map[string][]domain.Thread{
		ThreadKey("core", 7): {
			textThread("rita"),
			{Comments: []domain.Comment{
				{Author: "rita", CommentType: "text"},
				{Author: "bot", CommentType: "system"},
			}},
		},
	}
	got := AttributeReviews(links, threads)
	if got.ByAuthor["rita"] != 2 {
		t.Errorf("rita count = %d, want 2", got.ByAuthor["rita"])
	}
	if len(got.PRs) != 1 || got.PRs[0].Comments != 2 || got.PRs[0].PRID != 7 {
		t.Errorf("PRs = %+v", got.PRs)
	}
}

func TestAttributeReviews_NonTextFirstCommentExcluded(t *testing.T) {
	links := []domain.PRLink{{Repo: "core", PRID: 7}}
	threads := map[string][]domain.Thread{
		ThreadKey("core", 7): {
			{Comments: []domain.Comment{
				{Author: "bot", CommentType: "system"},
				{Author: "rita", CommentType: "text"}, // later comments are never inspected
			}},
		},
	}
	got := AttributeReviews(links, threads)
	if len(got.ByAuthor) != 0 {
		t.Fatalf("nothing should be counted: %+v", got.ByAuthor)
	}
	if len(got.Decisions) != 1 {
		t.Fatalf("decisions = %+v, want 1", got.Decisions)
	}
	d := got.Decisions[0]
	if d.Counted {
		t.Error("decision should be counted=false")
	}
	if !strings.Contains(d.Reason, "not text") {
		t.Errorf("reason = %q, want a not-text explanation", d.Reason)
	}
}

func TestAttributeReviews_DeduplicatesPRLinks(t *testing.T) {
	links := []domain.PRLink{
		{Repo: "core", PRID: 7},
		{Repo: "core", PRID: 7},
	}
	threads := map[string][]domain.Thread{
		ThreadKey("core", 7): {textThread("rita")},
	}
	got := AttributeReviews(links, threads)
	if got.ByAuthor["rita"] != 1 {
		t.Errorf("duplicate link must not double-count: %d", got.ByAuthor["rita"])
	}
	if len(got.PRs) != 1 {
		t.Errorf("PRs = %+v, want 1", got.PRs)
	}
}

func TestAttributeReviews_UnresolvedPRSkippedSilently(t *testing.T) {
	links := []domain.PRLink{{Repo: "gone", PRID: 9}, {Repo: "core", PRID: 7}}
	threads := map[string][]domain.Thread{
		ThreadKey("core", 7): {textThread("rita")},
	}
	got := AttributeReviews(links, threads)
	if got.ByAuthor["rita"] != 1 {
		t.Errorf("resolvable PR should still count: %+v", got.ByAuthor)
	}
	found := false
	for _, d := range got.Decisions {
		if d.PR == ThreadKey("gone", 9) && !d.Counted { found = true }
	}
	if !found {
		t.Errorf("unresolved PR should leave a diagnostic decision: %+v", got.Decisions)
	}
}

func TestAttributeReviews_EmptyAuthorFallsBackToUnknown(t *testing.T) {
	links := []domain.PRLink{{Repo: "core", PRID: 7}}
	threads := map[string][]domain.Thread{
		ThreadKey("core", 7): {textThread("")},
	}
	got := AttributeReviews(links, threads)
	if got.ByAuthor["Unknown"] != 1 {
		t.Errorf("ByAuthor = %+v, want Unknown=1", got.ByAuthor)
	}
}
