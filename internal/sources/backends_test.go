// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/internal/httputil"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func testClient() *httputil.Client {
	return httputil.NewClient(5*time.Second, "edu-benchmark-mapper/test", 0)
}

func withSemanticBase(t *testing.T, u string) {
	t.Helper()
	old := semanticAPIBase
	semanticAPIBase = u
	t.Cleanup(func() { semanticAPIBase = old })
}

func withHuggingFaceBase(t *testing.T, u string) {
	t.Helper()
	old := huggingFaceBase
	huggingFaceBase = u
	t.Cleanup(func() { huggingFaceBase = old })
}

// --- Semantic Scholar ---

const bulkPage1 = `{"total": 3, "token": "next-1", "data": [
	{"paperId": "p1", "title": "MathDial", "abstract": "Tutoring dialogues.", "year": 2023,
	 "publicationDate": "2023-05-23", "citationCount": 150, "url": "https://www.semanticscholar.org/paper/p1",
	 "fieldsOfStudy": ["Computer Science", "Education"], "externalIds": {"ArXiv": "2305.14536", "CorpusId": 258865}},
	{"paperId": "p2", "title": "", "abstract": "no title"}
]}`

const bulkPage2 = `{"total": 3, "data": [
	{"paperId": "p3", "title": "Essay Scoring Survey", "abstract": null, "year": 2021,
	 "citationCount": 3, "url": "", "externalIds": {"DOI": "10.1/x"}}
]}`

func TestSemanticScholar_Search(t *testing.T) {
	var reqs []*http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r)
		assert.Equal(t, "/paper/search/bulk", r.URL.Path)
		if r.URL.Query().Get("token") == "next-1" {
			fmt.Fprint(w, bulkPage2)
			return
		}
		fmt.Fprint(w, bulkPage1)
	}))
	defer ts.Close()
	withSemanticBase(t, ts.URL)

	b := NewSemanticScholar(testClient(), "s2-key", 0)
	got, err := b.Search(context.Background(), "tutoring benchmark")
	require.NoError(t, err)

	require.Len(t, reqs, 2)
	assert.Equal(t, "tutoring benchmark", reqs[0].URL.Query().Get("query"))
	assert.Contains(t, reqs[0].URL.Query().Get("fields"), "externalIds")
	assert.Equal(t, "s2-key", reqs[0].Header.Get("x-api-key"))

	require.Len(t, got, 2)
	assert.Equal(t, types.CandidateRecord{
		Name:        "MathDial",
		SourceURL:   "https://arxiv.org/abs/2305.14536",
		SourceType:  types.SourcePaper,
		Description: "Tutoring dialogues.",
		Date:        "2023-05-23",
		Tags:        []string{"tutoring benchmark", "computer-science", "education", "highly-cited"},
	}, got[0])

	assert.Equal(t, "https://www.semanticscholar.org/paper/p3", got[1].SourceURL)
	assert.Equal(t, "2021", got[1].Date)
	assert.Equal(t, []string{"tutoring benchmark"}, got[1].Tags)
}

func TestSemanticScholar_MaxResults(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, bulkPage1)
	}))
	defer ts.Close()
	withSemanticBase(t, ts.URL)

	got, err := NewSemanticScholar(testClient(), "", 1).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSemanticScholar_SearchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	withSemanticBase(t, ts.URL)

	_, err := NewSemanticScholar(testClient(), "", 10).Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestSemanticScholar_Details(t *testing.T) {
	var body struct {
		IDs []string `json:"ids"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paper/batch", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("fields"), "openAccessPdf")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `[
			{"paperId": "p1", "title": "MathDial", "tldr": {"model": "tldr@v2", "text": "Tutoring data."},
			 "externalIds": {"ArXiv": "2305.14536", "CorpusId": 258865},
			 "openAccessPdf": {"url": "https://example.org/p1.pdf", "status": "GREEN"}},
			null
		]`)
	}))
	defer ts.Close()
	withSemanticBase(t, ts.URL)

	got, err := NewSemanticScholar(testClient(), "", 0).Details(context.Background(), []string{"p1", "ARXIV:0000.00000"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "ARXIV:0000.00000"}, body.IDs)
	require.Len(t, got, 1)
	assert.Equal(t, "Tutoring data.", got[0].BestSummary())
	assert.Equal(t, "2305.14536", got[0].ArxivID())
	assert.Equal(t, "https://example.org/p1.pdf", got[0].OpenAccessPDF.URL)
}

func TestSemanticScholar_DetailsChunks(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()
	withSemanticBase(t, ts.URL)

	ids := make([]string, detailBatchSize+1)
	for i := range ids {
		ids[i] = "p" + strconv.Itoa(i)
	}
	_, err := NewSemanticScholar(testClient(), "", 0).Details(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// --- HuggingFace ---

func TestHFDatasets_Search(t *testing.T) {
	var offsets []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/datasets", r.URL.Path)
		assert.Equal(t, "likes", q.Get("sort"))
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		offsets = append(offsets, q.Get("offset"))

		n, _ := strconv.Atoi(q.Get("limit"))
		if q.Get("offset") != "0" {
			n = 10
		}
		page := make([]map[string]any, n)
		for i := range page {
			page[i] = map[string]any{"id": fmt.Sprintf("org/ds-%s-%d", q.Get("offset"), i)}
		}
		page[0] = map[string]any{
			"id":           page[0]["id"],
			"description":  "fallback description",
			"cardData":     map[string]any{"dataset_summary": "<p>Grade-school <em>math</em></p>"},
			"tags":         []string{"task_categories:question-answering", "language:en", "region:us", "license:cc-by-4.0"},
			"lastModified": "2024-03-11T08:00:00.000Z",
		}
		json.NewEncoder(w).Encode(page) //nolint:errcheck
	}))
	defer ts.Close()
	withHuggingFaceBase(t, ts.URL)

	got, err := NewHFDatasets(testClient(), "hf-token", 150).Search(context.Background(), "math reasoning benchmark")
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "100"}, offsets)
	require.Len(t, got, 110)
	first := got[0]
	assert.Equal(t, "org/ds-0-0", first.Name)
	assert.Equal(t, ts.URL+"/datasets/org/ds-0-0", first.SourceURL)
	assert.Equal(t, types.SourceDataset, first.SourceType)
	assert.Equal(t, "Grade-school math", first.Description)
	assert.Equal(t, "2024-03-11", first.Date)
	assert.Equal(t, []string{"math reasoning benchmark", "question-answering", "en", "cc-by-4.0"}, first.Tags)
}

func TestHFDailyPapers_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/daily_papers", r.URL.Path)
		fmt.Fprint(w, `[
			{"paper": {"id": "2401.00001", "title": "TutorEval", "summary": "Evaluating tutors.", "publishedAt": "2024-01-02T00:00:00.000Z"}},
			{"paper": {"id": "", "title": "no id"}},
			{}
		]`)
	}))
	defer ts.Close()
	withHuggingFaceBase(t, ts.URL)

	got, err := NewHFDailyPapers(testClient(), "").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ts.URL+"/papers/2401.00001", got[0].SourceURL)
	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, []string{"daily_papers"}, got[0].Tags)
}
