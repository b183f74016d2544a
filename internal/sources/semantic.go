// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/httputil"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticSearchFields = "paperId,title,abstract,year,citationCount,url,externalIds,publicationDate,fieldsOfStudy"
	semanticDetailFields = "paperId,title,abstract,tldr,year,venue,citationCount,fieldsOfStudy,externalIds,openAccessPdf,publicationDate"

	// detailBatchSize is the Graph API's limit for POST /paper/batch.
	detailBatchSize = 500

	// highlyCited tags papers with at least this many citations.
	highlyCited = 100
)

// SemanticScholar searches papers through the bulk search endpoint, which
// pages with a continuation token instead of offsets.
type SemanticScholar struct {
	Client *httputil.Client

	// MaxResults caps records per query. Zero means 1000.
	MaxResults int
}

// NewSemanticScholar returns a backend that authenticates with apiKey when
// it is set.
func NewSemanticScholar(client *httputil.Client, apiKey string, maxResults int) *SemanticScholar {
	if apiKey != "" {
		client.Header.Set("x-api-key", apiKey)
	}
	return &SemanticScholar{Client: client, MaxResults: maxResults}
}

// Name returns the backend identifier.
func (s *SemanticScholar) Name() string { return "semantic_scholar" }

// Search pages through bulk results until MaxResults records, the last
// page, or an empty page.
func (s *SemanticScholar) Search(ctx context.Context, query string) ([]types.CandidateRecord, error) {
	limit := s.MaxResults
	if limit <= 0 {
		limit = 1000
	}

	var (
		out   []types.CandidateRecord
		token string
	)
	for len(out) < limit {
		params := url.Values{"query": {query}, "fields": {semanticSearchFields}}
		if token != "" {
			params.Set("token", token)
		}
		var page semanticBulkResponse
		if err := s.Client.GetJSON(ctx, semanticAPIBase+"/paper/search/bulk", params, &page); err != nil {
			if len(out) > 0 {
				zap.L().Warn("semantic scholar paging stopped early",
					zap.String("query", query), zap.Int("records", len(out)), zap.Error(err))
				return out, nil
			}
			return nil, eris.Wrapf(err, "semantic scholar search %q", query)
		}
		for _, p := range page.Data {
			if len(out) >= limit {
				break
			}
			if r, ok := p.record(query); ok {
				out = append(out, r)
			}
		}
		if page.Token == "" || len(page.Data) == 0 {
			break
		}
		token = page.Token
	}
	return out, nil
}

// Details fetches full metadata for paper IDs in batches. IDs may be
// Semantic Scholar paper IDs or prefixed external IDs such as "ARXIV:2401.1".
// Unknown IDs are silently absent from the result.
func (s *SemanticScholar) Details(ctx context.Context, ids []string) ([]types.PaperDetail, error) {
	var out []types.PaperDetail
	params := url.Values{"fields": {semanticDetailFields}}
	for start := 0; start < len(ids); start += detailBatchSize {
		end := min(start+detailBatchSize, len(ids))
		var page []*types.PaperDetail
		body := map[string][]string{"ids": ids[start:end]}
		if err := s.Client.PostJSON(ctx, semanticAPIBase+"/paper/batch", params, body, &page); err != nil {
			return out, eris.Wrapf(err, "semantic scholar details %d-%d", start, end-1)
		}
		for _, d := range page {
			if d != nil && d.PaperID != "" {
				out = append(out, *d)
			}
		}
		zap.L().Debug("fetched paper details", zap.Int("through", end), zap.Int("of", len(ids)))
	}
	return out, nil
}

type semanticBulkResponse struct {
	Total int             `json:"total"`
	Token string          `json:"token"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string         `json:"paperId"`
	Title           string         `json:"title"`
	Abstract        string         `json:"abstract"`
	Year            int            `json:"year"`
	CitationCount   int            `json:"citationCount"`
	URL             string         `json:"url"`
	PublicationDate string         `json:"publicationDate"`
	FieldsOfStudy   []string       `json:"fieldsOfStudy"`
	ExternalIDs     map[string]any `json:"externalIds"`
}

// record converts a search hit. arXiv papers link to their abstract page so
// the same paper found on HuggingFace collapses onto one URL.
func (p semanticPaper) record(query string) (types.CandidateRecord, bool) {
	if p.PaperID == "" || p.Title == "" {
		return types.CandidateRecord{}, false
	}

	sourceURL := p.URL
	if arxiv, ok := p.ExternalIDs["ArXiv"].(string); ok && arxiv != "" {
		sourceURL = "https://arxiv.org/abs/" + arxiv
	} else if sourceURL == "" {
		sourceURL = "https://www.semanticscholar.org/paper/" + p.PaperID
	}

	date := datePrefix(p.PublicationDate)
	if date == "" && p.Year > 0 {
		date = strconv.Itoa(p.Year)
	}

	tags := []string{query}
	for _, f := range p.FieldsOfStudy {
		tags = append(tags, strings.ReplaceAll(strings.ToLower(f), " ", "-"))
	}
	if p.CitationCount >= highlyCited {
		tags = append(tags, "highly-cited")
	}

	return types.CandidateRecord{
		Name:        p.Title,
		SourceURL:   sourceURL,
		SourceType:  types.SourcePaper,
		Description: Describe(p.Abstract),
		Date:        date,
		Tags:        tags,
	}, true
}

// DetailID maps a paper record's source URL to an ID accepted by Details.
func DetailID(sourceURL string) (string, bool) {
	if id, ok := pathSegmentAfter(sourceURL, "semanticscholar.org/paper/"); ok {
		return id, true
	}
	if id, ok := pathSegmentAfter(sourceURL, "arxiv.org/abs/"); ok {
		return "ARXIV:" + id, true
	}
	return "", false
}

// DetailIDs collects unique detail IDs for the paper records.
func DetailIDs(records []types.CandidateRecord) []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range records {
		if r.SourceType != types.SourcePaper {
			continue
		}
		id, ok := DetailID(r.SourceURL)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// pathSegmentAfter returns the URL path segment following marker, without a
// query string. Semantic Scholar URLs may carry a title slug before the ID
// ("/paper/Some-Title/abc123"); the last segment is the ID.
func pathSegmentAfter(u, marker string) (string, bool) {
	i := strings.Index(u, marker)
	if i < 0 {
		return "", false
	}
	rest := u[i+len(marker):]
	if j := strings.IndexAny(rest, "?#"); j >= 0 {
		rest = rest[:j]
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "", false
	}
	if marker == "semanticscholar.org/paper/" {
		parts := strings.Split(rest, "/")
		rest = parts[len(parts)-1]
	}
	return rest, true
}
