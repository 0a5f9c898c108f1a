package assetindex

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/alexballas/assetgrid/masonry"
)

// ErrNotDirectory is returned when a scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

var (
	imageExtensions = []string{
		"png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff", "tif",
		"ico", "tga", "dds", "hdr", "exr", "svg",
	}
	videoExtensions = []string{"mp4", "mov", "avi", "mkv", "wmv", "webm", "flv"}
	proExtensions   = []string{
		"psd", "psb", "ai", "eps", "spine", "skel", "fbx", "obj", "gltf", "glb",
	}
	skipDirs = []string{"node_modules", "__pycache__"}
)

// probeWorkers bounds the concurrent header decodes of a scan.
const probeWorkers = 8

// batchSize is the number of records written per index transaction.
const batchSize = 20

// ScanPhase names a stage of ScanInto.
type ScanPhase string

const (
	PhaseScanning ScanPhase = "scanning"
	PhaseIndexing ScanPhase = "indexing"
	PhaseComplete ScanPhase = "complete"
)

// ScanProgress is reported while a folder is scanned.
type ScanProgress struct {
	Phase   ScanPhase
	Current int
	Total   int
	File    string
}

// IsSupported reports whether the extension (with or without the dot) is an
// asset type the scanner picks up.
func IsSupported(ext string) bool {
	ext = normalizeExt(ext)
	return slices.Contains(imageExtensions, ext) ||
		slices.Contains(videoExtensions, ext) ||
		slices.Contains(proExtensions, ext)
}

// IsVideo reports whether ext names a video container.
func IsVideo(ext string) bool {
	return slices.Contains(videoExtensions, normalizeExt(ext))
}

// Scan walks root and returns a record for every supported file, sorted by
// lower-cased name. Hidden entries, node_modules and __pycache__ are skipped.
// Image dimensions are read from file headers when the format is decodable;
// otherwise they stay 0.
func Scan(ctx context.Context, root string) ([]masonry.AssetRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %q: %w", root, ErrNotDirectory)
	}

	var recs []masonry.AssetRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the walk goes on.
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := d.Name()
		if path != root && shouldSkip(name, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := normalizeExt(filepath.Ext(name))
		if !IsSupported(ext) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		recs = append(recs, masonry.AssetRecord{
			Name:         name,
			Path:         path,
			Extension:    ext,
			ThumbnailRef: path,
			FileSize:     fi.Size(),
			ModifiedAt:   fi.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}

	slices.SortStableFunc(recs, func(a, b masonry.AssetRecord) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	if err := probeDimensions(ctx, recs); err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}
	return recs, nil
}

func shouldSkip(name string, dir bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return dir && slices.Contains(skipDirs, name)
}

// probeDimensions fills Width and Height of image records in place.
func probeDimensions(ctx context.Context, recs []masonry.AssetRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeWorkers)

	for i := range recs {
		if !slices.Contains(imageExtensions, recs[i].Extension) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, h, ok := imageSize(recs[i].Path)
			if ok {
				recs[i].Width, recs[i].Height = w, h
			}
			return nil
		})
	}
	return g.Wait()
}

func imageSize(path string) (int, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// Writer is the write side of an index ScanInto fills.
type Writer interface {
	AddFolder(ctx context.Context, path, name string) (Folder, error)
	ClearFolder(ctx context.Context, folderID int64) error
	UpsertAssets(ctx context.Context, folderID int64, recs []masonry.AssetRecord) ([]int64, error)
}

// ScanInto scans root and writes the results into w under the folder for
// root, replacing what was indexed for it before. progress may be nil.
func ScanInto(ctx context.Context, w Writer, root string, progress func(ScanProgress)) (Folder, error) {
	report := func(p ScanProgress) {
		if progress != nil {
			progress(p)
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Folder{}, fmt.Errorf("scan %q: %w", root, err)
	}

	report(ScanProgress{Phase: PhaseScanning, File: abs})
	recs, err := Scan(ctx, abs)
	if err != nil {
		return Folder{}, err
	}

	folder, err := w.AddFolder(ctx, abs, filepath.Base(abs))
	if err != nil {
		return Folder{}, err
	}
	if err := w.ClearFolder(ctx, folder.ID); err != nil {
		return Folder{}, err
	}

	total := len(recs)
	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)
		batch := recs[start:end]
		for i := range batch {
			batch[i].FolderID = folder.ID
		}
		if _, err := w.UpsertAssets(ctx, folder.ID, batch); err != nil {
			return Folder{}, err
		}
		report(ScanProgress{Phase: PhaseIndexing, Current: end, Total: total, File: batch[len(batch)-1].Name})
	}

	folder.AssetCount = total
	report(ScanProgress{Phase: PhaseComplete, Current: total, Total: total})
	return folder, nil
}
