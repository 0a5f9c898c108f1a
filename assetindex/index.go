// Package assetindex provides the asset index the grid pages through: the
// Index interface, an in-memory implementation, a SQLite implementation and a
// folder scanner that fills it.
package assetindex

import (
	"context"
	"strings"

	"github.com/alexballas/assetgrid/masonry"
)

// SortField names a column the index can order by.
type SortField string

const (
	SortName     SortField = "name"
	SortSize     SortField = "size"
	SortModified SortField = "modified"
	SortWidth    SortField = "width"
	SortExt      SortField = "ext"
)

// Sort is the ordering of a query. The zero value sorts by name ascending.
type Sort struct {
	Field SortField
	Desc  bool
}

// Filter narrows a query. Zero fields do not filter.
type Filter struct {
	FolderID   int64
	Search     string
	Extensions []string
	MinWidth   int
	MaxWidth   int
}

// Page is one page of query results. Total counts every matching record.
type Page struct {
	Records  []masonry.AssetRecord
	Total    int
	Page     int
	PageSize int
}

// Index is the query surface of an asset index.
type Index interface {
	QueryPage(ctx context.Context, filter Filter, sort Sort, page, pageSize int) (Page, error)
}

// Bind fixes the filter and sort of a query so the grid's loader can page
// through it.
func Bind(idx Index, filter Filter, sort Sort) masonry.PageSource {
	return masonry.PageSourceFunc(func(ctx context.Context, page, pageSize int) (masonry.PageResult, error) {
		p, err := idx.QueryPage(ctx, filter, sort, page, pageSize)
		if err != nil {
			return masonry.PageResult{}, err
		}
		return masonry.PageResult{Records: p.Records, Total: p.Total}, nil
	})
}

// normalizePage applies the index defaults: pages are 1-based and a zero page
// size means masonry.DefaultPageSize.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = masonry.DefaultPageSize
	}
	return page, masonry.ClampPageSize(pageSize)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
