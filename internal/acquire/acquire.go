// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads the full-text PDFs of discovered papers and
// tracks their state in a manifest so interrupted runs resume where they
// stopped.
package acquire

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/httputil"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/resilience"
	"github.com/pdiddy/edu-benchmark-mapper/internal/workpool"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// minPDFBytes is the size above which an existing file counts as downloaded.
const minPDFBytes = 1000

// maxErrorLen bounds the error text kept in the manifest.
const maxErrorLen = 200

var pdfMagic = []byte("%PDF-")

// Summary holds the outcome of a download run.
type Summary struct {
	Downloaded int
	Failed     int
	Bytes      int64
}

// Total returns the number of papers attempted.
func (s Summary) Total() int { return s.Downloaded + s.Failed }

// HasFailures reports whether any paper failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Downloader fetches PDFs into one directory.
type Downloader struct {
	client    *httputil.Client
	dir       string
	workers   int
	saveEvery int
	policy    resilience.Policy
}

// Option customizes a Downloader.
type Option func(*Downloader)

// WithClient replaces the HTTP client built from the config.
func WithClient(c *httputil.Client) Option {
	return func(d *Downloader) { d.client = c }
}

// WithRetryPolicy replaces the per-paper retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(d *Downloader) { d.policy = p }
}

// New returns a Downloader that writes into dir.
func New(cfg types.DownloadConfig, dir string, opts ...Option) *Downloader {
	d := &Downloader{
		client:    httputil.NewClient(cfg.Timeout, cfg.UserAgent, 0),
		dir:       dir,
		workers:   cfg.Workers,
		saveEvery: cfg.SaveEvery,
		policy:    resilience.DefaultPolicy(),
	}
	d.policy.OnRetry = resilience.LogRetries("download")
	for _, o := range opts {
		o(d)
	}
	return d
}

// Download fetches one paper and returns its updated manifest entry. A file
// already on disk is reported as downloaded without a request.
func (d *Downloader) Download(ctx context.Context, p types.PaperDownload) types.PaperDownload {
	dest := filepath.Join(d.dir, p.Filename)
	if info, err := os.Stat(dest); err == nil && info.Size() > minPDFBytes {
		p.Status, p.SizeBytes, p.Error = types.DownloadDone, info.Size(), ""
		return p
	}

	size, err := resilience.DoVal(ctx, d.policy, func(ctx context.Context) (int64, error) {
		return d.fetch(ctx, p.PDFURL, dest)
	})
	if err != nil {
		msg := err.Error()
		if len(msg) > maxErrorLen {
			msg = msg[:maxErrorLen]
		}
		p.Status, p.Error = types.DownloadFailed, msg
		zap.L().Debug("download failed", zap.String("paper_id", p.PaperID), zap.String("url", p.PDFURL), zap.Error(err))
		return p
	}
	p.Status, p.SizeBytes, p.Error = types.DownloadDone, size, ""
	return p
}

// fetch downloads url to dest through a temporary file. Access-denied and
// non-PDF responses fail at once; other failures are retried.
func (d *Downloader) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "building request for %s", url)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return 0, resilience.Transient(err, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnavailableForLegalReasons:
		return 0, eris.Errorf("access denied (HTTP %d)", resp.StatusCode)
	default:
		return 0, resilience.Transient(eris.Errorf("HTTP %d", resp.StatusCode), resp.StatusCode)
	}

	body := bufio.NewReader(resp.Body)
	head, _ := body.Peek(len(pdfMagic))
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "pdf") && !bytes.Equal(head, pdfMagic) {
		return 0, eris.Errorf("not a PDF (content-type: %s)", contentType)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return 0, eris.Wrapf(err, "creating directory %s", d.dir)
	}
	tmp, err := os.CreateTemp(d.dir, ".download-*.tmp")
	if err != nil {
		return 0, eris.Wrap(err, "creating temp file")
	}
	tmpPath := tmp.Name()

	n, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return 0, resilience.Transient(eris.Wrap(copyErr, "writing download"), 0)
	}
	if closeErr != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return 0, eris.Wrap(closeErr, "closing temp file")
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return 0, eris.Wrap(err, "renaming temp file")
	}
	return n, nil
}

// Pending drops papers the manifest marks downloaded whose file still
// exists, then applies limit when positive. It returns the remaining papers
// and the number already done.
func (d *Downloader) Pending(list []types.PaperDownload, m *Manifest, limit int) ([]types.PaperDownload, int) {
	var (
		pending []types.PaperDownload
		done    int
	)
	for _, p := range list {
		if prev, ok := m.Get(p.PaperID); ok && prev.Status == types.DownloadDone {
			if _, err := os.Stat(filepath.Join(d.dir, p.Filename)); err == nil {
				done++
				continue
			}
		}
		pending = append(pending, p)
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, done
}

// PrintPlan writes what a run would do. When dryRun is set it also lists up
// to 20 pending files.
func (d *Downloader) PrintPlan(w io.Writer, pending []types.PaperDownload, done int, dryRun bool) {
	fmt.Fprintf(w, "already downloaded: %d\n", done)
	fmt.Fprintf(w, "to download:        %d\n", len(pending))
	fmt.Fprintf(w, "workers:            %d\n", d.workers)
	fmt.Fprintf(w, "output dir:         %s\n", d.dir)
	if !dryRun {
		return
	}
	fmt.Fprintln(w, "\ndry run, nothing will be downloaded")
	for i, p := range pending {
		if i == 20 {
			fmt.Fprintf(w, "  ... and %d more\n", len(pending)-20)
			break
		}
		fmt.Fprintf(w, "  %s <- %s\n", p.Filename, p.PDFURL)
	}
}

// Run downloads pending papers concurrently, recording every outcome in m
// and saving it to manifestPath every saveEvery completions and at the end.
func (d *Downloader) Run(ctx context.Context, pending []types.PaperDownload, m *Manifest, manifestPath string, w io.Writer) (Summary, error) {
	var sum Summary
	err := workpool.Run(ctx, pending, workpool.Options{
		Workers:    d.workers,
		FlushEvery: d.saveEvery,
		Flush:      func() error { return m.Save(manifestPath) },
		Name:       "download",
	}, func(ctx context.Context, p types.PaperDownload) (types.PaperDownload, error) {
		return d.Download(ctx, p), nil
	}, func(_ types.PaperDownload, res types.PaperDownload) {
		m.Put(res)
		metrics.Downloads.WithLabelValues(string(res.Status)).Inc()
		if res.Status == types.DownloadDone {
			sum.Downloaded++
			sum.Bytes += res.SizeBytes
			fmt.Fprintf(w, "downloaded %s\n", res.Filename)
			return
		}
		sum.Failed++
		fmt.Fprintf(w, "failed  %s: %s\n", res.Filename, res.Error)
	})

	fmt.Fprintf(w, "\n%d downloaded, %d failed, %.2f GB\n", sum.Downloaded, sum.Failed, float64(sum.Bytes)/(1<<30))
	if sum.HasFailures() {
		fmt.Fprintln(w, "run again to retry failed downloads")
	}
	return sum, err
}
