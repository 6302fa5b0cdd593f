package azdo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/domain"
)

// prArtifactPrefix is how Azure DevOps encodes pull-request links inside
// work-item relations: vstfs:///Git/PullRequestId/{project}%2F{repo}%2F{id}.
const prArtifactPrefix = "vstfs:///Git/PullRequestId/"

// ToWorkItem maps the wire shapes into a typed domain record. Missing
// required revision fields are rejected here, at the boundary, so the
// analyzers never see malformed input. Unresolvable PR links are skipped
// and reported back for diagnostics, never fatal.
func ToWorkItem(w WireWorkItem, revs []WireRevision) (domain.WorkItem, []string, error) {
	if w.ID <= 0 {
		return domain.WorkItem{}, nil, fmt.Errorf("azdo: work item without id")
	}
	item := domain.WorkItem{
		ID:       w.ID,
		Type:     w.Fields.WorkItemType,
		Title:    w.Fields.Title,
		State:    w.Fields.State,
		Assignee: displayName(w.Fields.AssignedTo),
	}
	for i, r := range revs {
		if r.Fields.State == "" {
			return domain.WorkItem{}, nil, fmt.Errorf("azdo: item %d revision %d missing System.State", w.ID, i+1)
		}
		if r.Fields.ChangedDate.IsZero() {
			return domain.WorkItem{}, nil, fmt.Errorf("azdo: item %d revision %d missing System.ChangedDate", w.ID, i+1)
		}
		item.Revisions = append(item.Revisions, domain.Revision{
			State:       r.Fields.State,
			AssignedTo:  displayName(r.Fields.AssignedTo),
			ChangedBy:   displayName(r.Fields.ChangedBy),
			ChangedDate: r.Fields.ChangedDate.UTC(),
		})
	}
	var skipped []string
	for _, rel := range w.Relations {
		if rel.Rel != "ArtifactLink" || !strings.HasPrefix(rel.URL, prArtifactPrefix) { continue }
		link, ok := parsePullRequestURL(rel.URL)
		if !ok {
			skipped = append(skipped, rel.URL)
			continue
		}
		item.PRLinks = append(item.PRLinks, link)
	}
	return item, skipped, nil
}

// ToThreads maps wire comment threads into the engine's thread shape.
func ToThreads(threads []WireThread) []domain.Thread {
	out := make([]domain.Thread, 0, len(threads))
	for _, th := range threads {
		t := domain.Thread{}
		for _, cm := range th.Comments {
			t.Comments = append(t.Comments, domain.Comment{
				Author:      cm.Author.DisplayName,
				CommentType: cm.CommentType,
			})
		}
		out = append(out, t)
	}
	return out
}

func displayName(id *WireIdentity) string {
	if id == nil { return "" }
	return id.DisplayName
}

func parsePullRequestURL(u string) (domain.PRLink, bool) {
	payload, err := url.PathUnescape(strings.TrimPrefix(u, prArtifactPrefix))
	if err != nil { return domain.PRLink{}, false }
	// project/repository/pullRequestId
	parts := strings.Split(payload, "/")
	if len(parts) != 3 { return domain.PRLink{}, false }
	id, err := strconv.Atoi(parts[2])
	if err != nil || id <= 0 || parts[1] == "" { return domain.PRLink{}, false }
	return domain.PRLink{Repo: parts[1], PRID: id}, true
}
