// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/httputil"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// huggingFaceBase is the HuggingFace site root. Declared as a var so tests
// can substitute an httptest server.
var huggingFaceBase = "https://huggingface.co"

// hfPageSize is the largest page the datasets API returns.
const hfPageSize = 100

// datasetTagKinds are the tag namespaces kept from a dataset listing, with
// the namespace stripped ("task_categories:question-answering" becomes
// "question-answering").
var datasetTagKinds = map[string]bool{
	"task_categories": true,
	"task_ids":        true,
	"language":        true,
	"size_categories": true,
	"license":         true,
}

// HFDatasets searches HuggingFace datasets, most liked first.
type HFDatasets struct {
	Client *httputil.Client

	// MaxResults caps records per query. Zero means 200.
	MaxResults int
}

// NewHFDatasets returns a dataset backend that authenticates with token when
// it is set.
func NewHFDatasets(client *httputil.Client, token string, maxResults int) *HFDatasets {
	authorize(client, token)
	return &HFDatasets{Client: client, MaxResults: maxResults}
}

// Name returns the backend identifier.
func (h *HFDatasets) Name() string { return "hf_datasets" }

// Search pages through /api/datasets until MaxResults records or a short page.
func (h *HFDatasets) Search(ctx context.Context, query string) ([]types.CandidateRecord, error) {
	limit := h.MaxResults
	if limit <= 0 {
		limit = 200
	}

	var out []types.CandidateRecord
	for offset := 0; offset < limit; {
		pageLimit := min(hfPageSize, limit-offset)
		params := url.Values{
			"search":    {query},
			"sort":      {"likes"},
			"direction": {"-1"},
			"limit":     {strconv.Itoa(pageLimit)},
			"offset":    {strconv.Itoa(offset)},
			"full":      {"true"},
		}
		var page []hfDataset
		if err := h.Client.GetJSON(ctx, huggingFaceBase+"/api/datasets", params, &page); err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, eris.Wrapf(err, "huggingface datasets %q", query)
		}
		for _, ds := range page {
			if r, ok := ds.record(query); ok {
				out = append(out, r)
			}
		}
		if len(page) < pageLimit {
			break
		}
		offset += len(page)
	}
	return out, nil
}

type hfDataset struct {
	ID           string         `json:"id"`
	Description  string         `json:"description"`
	CardData     map[string]any `json:"cardData"`
	Tags         []string       `json:"tags"`
	LastModified string         `json:"lastModified"`
}

func (ds hfDataset) record(query string) (types.CandidateRecord, bool) {
	if ds.ID == "" {
		return types.CandidateRecord{}, false
	}

	desc := cardString(ds.CardData, "dataset_summary")
	if desc == "" {
		desc = cardString(ds.CardData, "description")
	}
	if desc == "" {
		desc = ds.Description
	}

	tags := []string{query}
	for _, t := range ds.Tags {
		kind, value, ok := strings.Cut(t, ":")
		if !ok || !datasetTagKinds[kind] {
			continue
		}
		if i := strings.LastIndex(value, ":"); i >= 0 {
			value = value[i+1:]
		}
		tags = append(tags, value)
	}

	return types.CandidateRecord{
		Name:        ds.ID,
		SourceURL:   huggingFaceBase + "/datasets/" + ds.ID,
		SourceType:  types.SourceDataset,
		Description: Describe(desc),
		Date:        datePrefix(ds.LastModified),
		Tags:        tags,
	}, true
}

func cardString(card map[string]any, key string) string {
	s, _ := card[key].(string)
	return s
}

// HFDailyPapers reads the HuggingFace daily papers feed.
type HFDailyPapers struct {
	Client *httputil.Client
}

// NewHFDailyPapers returns the daily papers feed.
func NewHFDailyPapers(client *httputil.Client, token string) *HFDailyPapers {
	authorize(client, token)
	return &HFDailyPapers{Client: client}
}

// Name returns the feed identifier.
func (h *HFDailyPapers) Name() string { return "hf_daily_papers" }

// Fetch returns today's featured papers.
func (h *HFDailyPapers) Fetch(ctx context.Context) ([]types.CandidateRecord, error) {
	var items []struct {
		Paper struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Summary     string `json:"summary"`
			PublishedAt string `json:"publishedAt"`
		} `json:"paper"`
	}
	if err := h.Client.GetJSON(ctx, huggingFaceBase+"/api/daily_papers", nil, &items); err != nil {
		return nil, eris.Wrap(err, "huggingface daily papers")
	}

	var out []types.CandidateRecord
	for _, it := range items {
		p := it.Paper
		if p.ID == "" || p.Title == "" {
			continue
		}
		out = append(out, types.CandidateRecord{
			Name:        p.Title,
			SourceURL:   huggingFaceBase + "/papers/" + p.ID,
			SourceType:  types.SourcePaper,
			Description: Describe(p.Summary),
			Date:        datePrefix(p.PublishedAt),
			Tags:        []string{"daily_papers"},
		})
	}
	return out, nil
}

func authorize(client *httputil.Client, token string) {
	if token != "" {
		client.Header.Set("Authorization", "Bearer "+token)
	}
}
