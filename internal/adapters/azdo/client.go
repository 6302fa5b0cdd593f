/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package azdo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Client is a thin Azure DevOps REST client for work-item queries,
// revision logs and pull-request comment threads. It retries 429/5xx with
// exponential backoff; any other failure surfaces immediately.
type Client struct {
	baseURL string
	org     string
	project string
	pat     string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	hc := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.AzdoPAT == "" && cfg.AzdoOAuthToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AzdoOAuthToken})
		hc = oauth2.NewClient(context.Background(), ts)
		hc.Timeout = cfg.HTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.AzdoBaseURL, "/"),
		org:     cfg.AzdoOrg,
		project: cfg.AzdoProject,
		pat:     cfg.AzdoPAT,
		http:    hc,
		log:     log,
	}
}

const apiVersion = "7.0"

// Wire shapes, decoded as-is from the REST responses. The adapter maps
// these into domain records and is the only place that validates them.

type WireIdentity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type WireFields struct {
	WorkItemType string        `json:"System.WorkItemType"`
	Title        string        `json:"System.Title"`
	State        string        `json:"System.State"`
	AssignedTo   *WireIdentity `json:"System.AssignedTo"`
	ChangedBy    *WireIdentity `json:"System.ChangedBy"`
	ChangedDate  time.Time     `json:"System.ChangedDate"`
}

type WireRelation struct {
	Rel string `json:"rel"`
	URL string `json:"url"`
}

type WireWorkItem struct {
	ID        int            `json:"id"`
	Fields    WireFields     `json:"fields"`
	Relations []WireRelation `json:"relations"`
}

type WireRevision struct {
	Rev    int        `json:"rev"`
	Fields WireFields `json:"fields"`
}

type WireComment struct {
	Author      WireIdentity `json:"author"`
	CommentType string       `json:"commentType"`
	Content     string       `json:"content"`
}

type WireThread struct {
	Comments []WireComment `json:"comments"`
}

func (c *Client) projectURL(path string, q url.Values) string {
	if q == nil { q = url.Values{} }
	q.Set("api-version", apiVersion)
	return fmt.Sprintf("%s/%s/%s%s?%s", c.baseURL, url.PathEscape(c.org), url.PathEscape(c.project), path, q.Encode())
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	if c.baseURL == "" || c.org == "" { return errors.New("azdo: client not configured") }
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil { return err }
		payload = b
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var r io.Reader
		if payload != nil { r = strings.NewReader(string(payload)) }
		req, err := http.NewRequestWithContext(ctx, method, u, r)
		if err != nil { return err }
		if payload != nil { req.Header.Set("Content-Type", "application/json") }
		if c.pat != "" { req.SetBasicAuth("", c.pat) }
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode < 300 {
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err
		} else {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			apiErr := fmt.Errorf("azdo api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
			// retry only on 429/5xx
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 { return apiErr }
			lastErr = apiErr
		}
		time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
	}
	return lastErr
}

// QueryWorkItemIDs runs a WIQL query and returns the matching ids.
func (c *Client) QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error) {
	if strings.TrimSpace(wiql) == "" { return nil, errors.New("azdo: empty wiql query") }
	var out struct {
		WorkItems []struct {
			ID int `json:"id"`
		} `json:"workItems"`
	}
	u := c.projectURL("/_apis/wit/wiql", nil)
	if err := c.do(ctx, http.MethodPost, u, map[string]string{"query": wiql}, &out); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(out.WorkItems))
	for _, w := range out.WorkItems { ids = append(ids, w.ID) }
	return ids, nil
}

// WorkItems fetches up to 200 items by id with their relations expanded.
func (c *Client) WorkItems(ctx context.Context, ids []int) ([]WireWorkItem, error) {
	if len(ids) == 0 { return nil, nil }
	if len(ids) > 200 { return nil, fmt.Errorf("azdo: %d ids exceeds the 200-item batch limit", len(ids)) }
	parts := make([]string, 0, len(ids))
	for _, id := range ids { parts = append(parts, strconv.Itoa(id)) }
	q := url.Values{}
	q.Set("ids", strings.Join(parts, ","))
	q.Set("$expand", "relations")
	var out struct {
		Value []WireWorkItem `json:"value"`
	}
	u := c.projectURL("/_apis/wit/workitems", q)
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil { return nil, err }
	return out.Value, nil
}

// Revisions fetches the full ordered revision log for one work item,
// paging until the server runs out.
func (c *Client) Revisions(ctx context.Context, id int) ([]WireRevision, error) {
	const page = 200
	var all []WireRevision
	skip := 0
	for {
		q := url.Values{}
		q.Set("$top", strconv.Itoa(page))
		if skip > 0 { q.Set("$skip", strconv.Itoa(skip)) }
		var out struct {
			Value []WireRevision `json:"value"`
		}
		u := c.projectURL("/_apis/wit/workItems/"+strconv.Itoa(id)+"/revisions", q)
		if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil { return nil, err }
		all = append(all, out.Value...)
		if len(out.Value) < page { break }
		skip += page
	}
	return all, nil
}

// PullRequestThreads fetches the comment threads of one pull request.
func (c *Client) PullRequestThreads(ctx context.Context, repo string, prID int) ([]WireThread, error) {
	if repo == "" || prID <= 0 { return nil, errors.New("azdo: invalid pull request reference") }
	var out struct {
		Value []WireThread `json:"value"`
	}
	path := "/_apis/git/repositories/" + url.PathEscape(repo) + "/pullRequests/" + strconv.Itoa(prID) + "/threads"
	u := c.projectURL(path, nil)
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil { return nil, err }
	return out.Value, nil
}
