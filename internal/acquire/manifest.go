// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// ManifestFile is the download manifest's name under the output directory.
const ManifestFile = "papers_manifest.json"

// Manifest tracks every paper's download state across runs, keyed by paper
// ID in first-seen order. It is safe for concurrent use.
type Manifest struct {
	mu    sync.Mutex
	order []string
	byID  map[string]types.PaperDownload
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{byID: map[string]types.PaperDownload{}}
}

// LoadManifest reads the manifest at path. A missing or unreadable file
// yields an empty manifest; the next run rebuilds it.
func LoadManifest(path string) *Manifest {
	m := NewManifest()
	var list []types.PaperDownload
	if _, err := jsonfile.Read(path, &list); err != nil {
		zap.L().Warn("ignoring unreadable manifest", zap.String("path", path), zap.Error(err))
		return m
	}
	for _, p := range list {
		if p.PaperID != "" {
			m.Put(p)
		}
	}
	return m
}

// Get returns the entry for id.
func (m *Manifest) Get(id string) (types.PaperDownload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	return p, ok
}

// Put inserts or replaces an entry.
func (m *Manifest) Put(p types.PaperDownload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.PaperID]; !ok {
		m.order = append(m.order, p.PaperID)
	}
	m.byID[p.PaperID] = p
}

// Len is the number of entries.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// List returns entries in first-seen order.
func (m *Manifest) List() []types.PaperDownload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.PaperDownload, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Downloaded returns the entries whose PDF is on disk.
func (m *Manifest) Downloaded() []types.PaperDownload {
	var out []types.PaperDownload
	for _, p := range m.List() {
		if p.Status == types.DownloadDone {
			out = append(out, p)
		}
	}
	return out
}

// ClearFailed resets failed entries to pending so they are attempted again.
// It returns the number reset.
func (m *Manifest) ClearFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, p := range m.byID {
		if p.Status == types.DownloadFailed {
			p.Status = types.DownloadPending
			p.Error = ""
			m.byID[id] = p
			n++
		}
	}
	return n
}

// Save writes the manifest to path as a JSON array.
func (m *Manifest) Save(path string) error {
	return jsonfile.Write(path, m.List())
}
