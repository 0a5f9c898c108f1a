package assetindex

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/alexballas/assetgrid/masonry"
)

// MemoryIndex is an Index over a slice of records. It is safe for concurrent
// use.
type MemoryIndex struct {
	mu      sync.RWMutex
	records []masonry.AssetRecord
}

// NewMemoryIndex returns an index holding a copy of records.
func NewMemoryIndex(records []masonry.AssetRecord) *MemoryIndex {
	return &MemoryIndex{records: slices.Clone(records)}
}

// Add appends records to the index.
func (m *MemoryIndex) Add(records ...masonry.AssetRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// Len returns the number of records held.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// QueryPage implements Index.
func (m *MemoryIndex) QueryPage(ctx context.Context, filter Filter, sort Sort, page, pageSize int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	page, pageSize = normalizePage(page, pageSize)

	m.mu.RLock()
	var matched []masonry.AssetRecord
	for _, rec := range m.records {
		if filter.matches(rec) {
			matched = append(matched, rec)
		}
	}
	m.mu.RUnlock()

	slices.SortStableFunc(matched, sort.compare)

	out := Page{Total: len(matched), Page: page, PageSize: pageSize}
	start := (page - 1) * pageSize
	if start < len(matched) {
		end := min(start+pageSize, len(matched))
		out.Records = matched[start:end]
	}
	return out, nil
}

func (f Filter) matches(rec masonry.AssetRecord) bool {
	if f.FolderID != 0 && rec.FolderID != f.FolderID {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Extensions) > 0 && !slices.ContainsFunc(f.Extensions, func(ext string) bool {
		return normalizeExt(ext) == normalizeExt(rec.Extension)
	}) {
		return false
	}
	if f.MinWidth > 0 && rec.Width < f.MinWidth {
		return false
	}
	if f.MaxWidth > 0 && rec.Width > f.MaxWidth {
		return false
	}
	return true
}

func (s Sort) compare(a, b masonry.AssetRecord) int {
	var c int
	switch s.Field {
	case SortSize:
		c = cmp.Compare(a.FileSize, b.FileSize)
	case SortModified:
		c = cmp.Compare(a.ModifiedAt, b.ModifiedAt)
	case SortWidth:
		c = cmp.Compare(a.Width, b.Width)
	case SortExt:
		c = cmp.Compare(normalizeExt(a.Extension), normalizeExt(b.Extension))
	default:
		c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	if s.Desc {
		c = -c
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	return c
}
