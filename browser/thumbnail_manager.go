package browser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/alexballas/assetgrid/assetindex"
)

type thumbnailRequest struct {
	ref      string
	width    int
	callback func(image.Image)
}

// ThumbnailManager decodes, scales and caches tile thumbnails. Requests are
// served newest first by a small worker pool, since the newest requests
// belong to the tiles the user is looking at.
type ThumbnailManager struct {
	cache      *lru.Cache[string, image.Image]
	requests   []thumbnailRequest
	reqLock    sync.Mutex
	reqCond    *sync.Cond
	decodes    singleflight.Group
	ffmpegPath string
	cacheDir   string
}

var (
	MaxCacheSize  int64 = 500 * 1024 * 1024 // 500MB
	MaxCacheFiles int   = 10000
	// MaxMemoryThumbnails bounds the decoded thumbnails kept in memory; the
	// least recently used ones are dropped first.
	MaxMemoryThumbnails = 600
)

const (
	maxPendingThumbnails = 100
	thumbnailWorkers     = 4

	thumbnailStep     = 64
	maxThumbnailWidth = 1024
)

var (
	instance *ThumbnailManager
	once     sync.Once
)

// GetThumbnailManager returns the process wide manager, starting it on first
// use. Thumbnails are cached on disk under the user cache directory.
func GetThumbnailManager() *ThumbnailManager {
	once.Do(func() {
		ffmpeg := "ffmpeg"
		if app := fyne.CurrentApp(); app != nil {
			ffmpeg = NewSettings(app).FFmpegPath()
		}

		var cacheDir string
		if userCache, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(userCache, "assetgrid", "thumbnails")
		}
		instance = newThumbnailManager(cacheDir, ffmpeg, thumbnailWorkers)
	})
	return instance
}

func newThumbnailManager(cacheDir, ffmpeg string, workers int) *ThumbnailManager {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, image.Image](max(1, MaxMemoryThumbnails))
	m := &ThumbnailManager{
		cache:      cache,
		requests:   make([]thumbnailRequest, 0, maxPendingThumbnails),
		ffmpegPath: ffmpeg,
		cacheDir:   cacheDir,
	}
	m.reqCond = sync.NewCond(&m.reqLock)

	if m.cacheDir != "" {
		if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
			fyne.LogError("Failed to create thumbnail cache", err)
			m.cacheDir = ""
		} else {
			go m.cleanupCache()
		}
	}

	for range workers {
		go m.worker()
	}
	return m
}

// SetFFmpegPath changes the binary used to grab video frames.
func (m *ThumbnailManager) SetFFmpegPath(path string) {
	m.reqLock.Lock()
	m.ffmpegPath = path
	m.reqLock.Unlock()
}

// thumbnailWidth rounds a tile width in pixels up to a cache bucket, so small
// column width changes reuse the same thumbnails.
func thumbnailWidth(pixels float32) int {
	w := int(pixels+thumbnailStep-1) / thumbnailStep * thumbnailStep
	if w < thumbnailStep {
		return thumbnailStep
	}
	if w > maxThumbnailWidth {
		return maxThumbnailWidth
	}
	return w
}

func memoryKey(ref string, width int) string {
	return ref + "@" + strconv.Itoa(width)
}

// CanThumbnail reports whether a thumbnail can be produced for ref.
func CanThumbnail(ref string) bool {
	ext := filepath.Ext(ref)
	return isSupportedImage(ext) || assetindex.IsVideo(ext)
}

// LoadMemoryOnly returns a cached thumbnail without touching the disk, or nil.
func (m *ThumbnailManager) LoadMemoryOnly(ref string, width int) image.Image {
	if img, ok := m.cache.Get(memoryKey(ref, width)); ok {
		return img
	}
	return nil
}

func (m *ThumbnailManager) remember(ref string, width int, img image.Image) {
	m.cache.Add(memoryKey(ref, width), img)
}

// Load calls callback with the thumbnail of ref scaled to width. The callback
// may run on a worker goroutine. Unsupported refs never call back.
func (m *ThumbnailManager) Load(ref string, width int, callback func(image.Image)) {
	if ref == "" || !CanThumbnail(ref) {
		return
	}

	if img := m.LoadMemoryOnly(ref, width); img != nil {
		callback(img)
		return
	}
	if img := m.loadDisk(ref, width); img != nil {
		callback(img)
		return
	}

	m.reqLock.Lock()
	// Full queue: drop the oldest request, its tile has most likely scrolled away.
	if len(m.requests) >= maxPendingThumbnails {
		m.requests = m.requests[1:]
	}
	m.requests = append(m.requests, thumbnailRequest{ref: ref, width: width, callback: callback})
	m.reqCond.Signal()
	m.reqLock.Unlock()
}

// Prewarm pulls disk cached thumbnails of refs into memory in the background.
func (m *ThumbnailManager) Prewarm(refs []string, width int) {
	if m.cacheDir == "" || len(refs) == 0 {
		return
	}

	go func() {
		for _, ref := range refs {
			if ref == "" || !CanThumbnail(ref) {
				continue
			}
			if m.cache.Contains(memoryKey(ref, width)) {
				continue
			}
			m.loadDisk(ref, width)
			// Small sleep to avoid I/O spikes
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func (m *ThumbnailManager) loadDisk(ref string, width int) image.Image {
	if m.cacheDir == "" {
		return nil
	}
	key, err := m.generateCacheKey(ref, width)
	if err != nil {
		return nil
	}
	img, err := loadImage(filepath.Join(m.cacheDir, key+".jpg"))
	if err != nil {
		return nil
	}
	m.remember(ref, width, img)
	return img
}

func (m *ThumbnailManager) worker() {
	for {
		m.reqLock.Lock()
		for len(m.requests) == 0 {
			m.reqCond.Wait()
		}
		// Pop LAST request (LIFO)
		lastIdx := len(m.requests) - 1
		req := m.requests[lastIdx]
		m.requests = m.requests[:lastIdx]
		m.reqLock.Unlock()

		key := memoryKey(req.ref, req.width)
		v, err, _ := m.decodes.Do(key, func() (any, error) {
			if cached, ok := m.cache.Get(key); ok {
				return cached, nil
			}
			img, err := m.render(req.ref, req.width)
			if err != nil {
				return nil, err
			}
			m.remember(req.ref, req.width, img)
			return img, nil
		})
		if err != nil {
			continue
		}
		req.callback(v.(image.Image))
	}
}

func (m *ThumbnailManager) render(ref string, width int) (image.Image, error) {
	var src image.Image
	var err error

	ext := filepath.Ext(ref)
	if isSupportedImage(ext) {
		src, err = loadImage(ref)
	} else {
		src, err = m.generateVideoThumbnail(ref)
	}
	if err != nil {
		return nil, err
	}

	dst := scaleToWidth(src, width)
	if dst == nil {
		return nil, fmt.Errorf("empty image %q", ref)
	}

	if m.cacheDir != "" {
		if key, err := m.generateCacheKey(ref, width); err == nil {
			if f, err := os.Create(filepath.Join(m.cacheDir, key+".jpg")); err == nil {
				_ = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
				f.Close()
			}
		}
	}
	return dst, nil
}

// scaleToWidth shrinks img to width keeping its aspect ratio. Images that are
// already narrow enough are returned unchanged.
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}
	if srcW <= width {
		return img
	}

	height := max(1, (srcH*width+srcW/2)/srcW)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// ApproxBiLinear is fast enough to run on every visible tile.
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func (m *ThumbnailManager) generateVideoThumbnail(path string) (image.Image, error) {
	m.reqLock.Lock()
	ffmpeg := m.ffmpegPath
	m.reqLock.Unlock()

	duration, err := videoDuration(ffmpeg, path)
	if err != nil {
		duration = time.Second
	}

	// Grab the middle frame. Seeking before -i is less exact but much faster.
	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	cmd := exec.Command(ffmpeg, "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	applyHiddenWindow(cmd)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(&buf)
	return img, err
}

var durationPattern = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

func videoDuration(ffmpeg, path string) (time.Duration, error) {
	cmd := exec.Command(ffmpeg, "-i", path)
	applyHiddenWindow(cmd)
	// ffmpeg prints stream info to stderr and exits non-zero without an output file.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return parseDuration(stderr.String())
}

func parseDuration(out string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(out)
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not find duration in output")
	}

	var parts [4]int
	for i := range parts {
		parts[i], _ = strconv.Atoi(matches[i+1])
	}

	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3]*10)*time.Millisecond, nil
}

func isSupportedImage(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png", "jpg", "jpeg", "gif", "bmp", "webp", "tif", "tiff":
		return true
	}
	return false
}

// generateCacheKey hashes the absolute path, modification time, size, the
// first 32KB of content and the target width.
func (m *ThumbnailManager) generateCacheKey(path string, width int) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte(info.ModTime().String()))
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	h.Write([]byte("w" + strconv.Itoa(width)))

	f, err := os.Open(absPath)
	if err == nil {
		defer f.Close()
		buf := make([]byte, 32*1024)
		n, _ := f.Read(buf)
		h.Write(buf[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// cleanupCache evicts the oldest cached files once the cache exceeds its
// limits, down to 80% of them.
func (m *ThumbnailManager) cleanupCache() {
	if m.cacheDir == "" {
		return
	}

	files, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cachedFiles []fileInfo
	var totalSize int64

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cachedFiles = append(cachedFiles, fileInfo{
			name: f.Name(),
			size: info.Size(),
			time: info.ModTime(),
		})
		totalSize += info.Size()
	}

	if totalSize <= MaxCacheSize && len(cachedFiles) <= MaxCacheFiles {
		return
	}

	sort.Slice(cachedFiles, func(i, j int) bool {
		return cachedFiles[i].time.Before(cachedFiles[j].time)
	})

	for len(cachedFiles) > 0 {
		if totalSize <= int64(float64(MaxCacheSize)*0.8) && len(cachedFiles) <= int(float64(MaxCacheFiles)*0.8) {
			break
		}
		f := cachedFiles[0]
		_ = os.Remove(filepath.Join(m.cacheDir, f.name))
		totalSize -= f.size
		cachedFiles = cachedFiles[1:]
	}
}
