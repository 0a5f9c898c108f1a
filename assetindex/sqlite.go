package assetindex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alexballas/assetgrid/masonry"
)

const schema = `
CREATE TABLE IF NOT EXISTS folders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);

CREATE TABLE IF NOT EXISTS assets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	folder_id INTEGER NOT NULL,
	file_path TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	file_ext TEXT NOT NULL,
	file_size INTEGER NOT NULL DEFAULT 0,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	thumb_path TEXT NOT NULL DEFAULT '',
	modified_at INTEGER NOT NULL DEFAULT 0,
	scanned_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_assets_folder ON assets(folder_id);
CREATE INDEX IF NOT EXISTS idx_assets_ext ON assets(file_ext);
CREATE INDEX IF NOT EXISTS idx_assets_name ON assets(file_name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_assets_size ON assets(file_size);
CREATE INDEX IF NOT EXISTS idx_assets_modified ON assets(modified_at);
`

// Folder is a scanned root folder.
type Folder struct {
	ID         int64
	Path       string
	Name       string
	AssetCount int
}

// FormatCount is the number of indexed assets with one extension.
type FormatCount struct {
	Ext   string
	Count int
}

// Stats summarises the whole index.
type Stats struct {
	Assets    int
	Folders   int
	TotalSize int64
	// Formats is ordered by count, most common first.
	Formats []FormatCount
}

// SQLiteIndex is an Index backed by a SQLite database.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the index database at path. Use
// ":memory:" for a throwaway index.
func OpenSQLite(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if path == ":memory:" {
		// Each connection of the pool would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index tables: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// AddFolder registers a folder, returning the existing row if the path is
// already known.
func (s *SQLiteIndex) AddFolder(ctx context.Context, path, name string) (Folder, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO folders (path, name) VALUES (?, ?)`, path, name); err != nil {
		return Folder{}, fmt.Errorf("insert folder %q: %w", path, err)
	}

	var f Folder
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, name, (SELECT COUNT(*) FROM assets WHERE folder_id = folders.id)
		FROM folders WHERE path = ?`, path).Scan(&f.ID, &f.Path, &f.Name, &f.AssetCount)
	if err != nil {
		return Folder{}, fmt.Errorf("load folder %q: %w", path, err)
	}
	return f, nil
}

// Folders lists registered folders by name.
func (s *SQLiteIndex) Folders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.path, f.name, (SELECT COUNT(*) FROM assets WHERE folder_id = f.id)
		FROM folders f ORDER BY f.name`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var out []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Path, &f.Name, &f.AssetCount); err != nil {
			return nil, fmt.Errorf("list folders: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RemoveFolder deletes a folder and its assets.
func (s *SQLiteIndex) RemoveFolder(ctx context.Context, folderID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("remove folder assets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, folderID); err != nil {
		return fmt.Errorf("remove folder: %w", err)
	}
	return tx.Commit()
}

// ClearFolder deletes the assets of a folder, keeping the folder itself.
func (s *SQLiteIndex) ClearFolder(ctx context.Context, folderID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("clear folder %d: %w", folderID, err)
	}
	return nil
}

// Stats counts the indexed assets, folders and bytes, and the assets per
// extension.
func (s *SQLiteIndex) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM assets), (SELECT COUNT(*) FROM folders),
			(SELECT COALESCE(SUM(file_size), 0) FROM assets)`).Scan(&st.Assets, &st.Folders, &st.TotalSize)
	if err != nil {
		return Stats{}, fmt.Errorf("index stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT file_ext, COUNT(*) AS cnt FROM assets
		GROUP BY file_ext ORDER BY cnt DESC, file_ext`)
	if err != nil {
		return Stats{}, fmt.Errorf("format stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc FormatCount
		if err := rows.Scan(&fc.Ext, &fc.Count); err != nil {
			return Stats{}, fmt.Errorf("format stats: %w", err)
		}
		st.Formats = append(st.Formats, fc)
	}
	return st, rows.Err()
}

// UpsertAssets writes records in one transaction, keyed by path. IDs of the
// passed records are ignored; the stored ids are returned in order.
func (s *SQLiteIndex) UpsertAssets(ctx context.Context, folderID int64, recs []masonry.AssetRecord) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (folder_id, file_path, file_name, file_ext, file_size, width, height, thumb_path, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			folder_id = excluded.folder_id,
			file_size = excluded.file_size,
			width = excluded.width,
			height = excluded.height,
			thumb_path = excluded.thumb_path,
			modified_at = excluded.modified_at,
			scanned_at = strftime('%s','now')
		RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		var id int64
		err := stmt.QueryRowContext(ctx, folderID, r.Path, r.Name, normalizeExt(r.Extension),
			r.FileSize, r.Width, r.Height, r.ThumbnailRef, r.ModifiedAt).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("upsert %q: %w", r.Path, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// QueryPage implements Index.
func (s *SQLiteIndex) QueryPage(ctx context.Context, filter Filter, sort Sort, page, pageSize int) (Page, error) {
	page, pageSize = normalizePage(page, pageSize)
	where, args := filter.sqlWhere()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets"+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count assets: %w", err)
	}

	query := `SELECT id, folder_id, file_path, file_name, file_ext, file_size, width, height, thumb_path, modified_at
		FROM assets` + where + sort.sqlOrder() + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return Page{}, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	out := Page{Total: total, Page: page, PageSize: pageSize}
	for rows.Next() {
		var r masonry.AssetRecord
		if err := rows.Scan(&r.ID, &r.FolderID, &r.Path, &r.Name, &r.Extension, &r.FileSize,
			&r.Width, &r.Height, &r.ThumbnailRef, &r.ModifiedAt); err != nil {
			return Page{}, fmt.Errorf("scan asset: %w", err)
		}
		out.Records = append(out.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("query assets: %w", err)
	}
	return out, nil
}

func (f Filter) sqlWhere() (string, []any) {
	var conds []string
	var args []any

	if f.FolderID != 0 {
		conds = append(conds, "folder_id = ?")
		args = append(args, f.FolderID)
	}
	if f.Search != "" {
		conds = append(conds, "file_name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if len(f.Extensions) > 0 {
		marks := make([]string, len(f.Extensions))
		for i, ext := range f.Extensions {
			marks[i] = "?"
			args = append(args, normalizeExt(ext))
		}
		conds = append(conds, "file_ext IN ("+strings.Join(marks, ",")+")")
	}
	if f.MinWidth > 0 {
		conds = append(conds, "width >= ?")
		args = append(args, f.MinWidth)
	}
	if f.MaxWidth > 0 {
		conds = append(conds, "width <= ?")
		args = append(args, f.MaxWidth)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s Sort) sqlOrder() string {
	col := "file_name COLLATE NOCASE"
	switch s.Field {
	case SortSize:
		col = "file_size"
	case SortModified:
		col = "modified_at"
	case SortWidth:
		col = "width"
	case SortExt:
		col = "file_ext"
	}
	dir := " ASC"
	if s.Desc {
		dir = " DESC"
	}
	// id keeps pages stable when the sort column has ties.
	return " ORDER BY " + col + dir + ", id ASC"
}
