package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/FyshOS/fancyfs"

	"github.com/alexballas/assetgrid/assetindex"
)

type folderItem struct {
	folder assetindex.Folder
	label  string
	icon   fyne.Resource
}

// FolderSidebar lists the indexed folders. The first row shows every asset.
type FolderSidebar struct {
	widget.BaseWidget

	// OnSelected receives the chosen folder; ID 0 means all folders.
	OnSelected func(folder assetindex.Folder)

	list  *widget.List
	items []folderItem
}

// NewFolderSidebar returns a sidebar with only the "All assets" row.
func NewFolderSidebar() *FolderSidebar {
	s := &FolderSidebar{}
	s.SetFolders(nil)

	s.list = widget.NewList(
		func() int { return len(s.items) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.FolderIcon()),
				widget.NewLabel("Template"),
			)
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(s.items) {
				return
			}
			item := s.items[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Icon).SetResource(item.icon)
			box.Objects[1].(*widget.Label).SetText(item.label)
		},
	)
	s.list.OnSelected = func(id widget.ListItemID) {
		if id < len(s.items) && s.OnSelected != nil {
			s.OnSelected(s.items[id].folder)
		}
	}

	s.ExtendBaseWidget(s)
	return s
}

// SetFolders replaces the listed folders.
func (s *FolderSidebar) SetFolders(folders []assetindex.Folder) {
	total := 0
	for _, f := range folders {
		total += f.AssetCount
	}

	s.items = append(s.items[:0], folderItem{
		label: fmt.Sprintf("All assets (%d)", total),
		icon:  theme.GridIcon(),
	})
	for _, f := range folders {
		s.items = append(s.items, folderItem{
			folder: f,
			label:  fmt.Sprintf("%s (%d)", f.Name, f.AssetCount),
			icon:   folderIcon(f.Path),
		})
	}
	if s.list != nil {
		s.list.Refresh()
	}
}

// Select highlights the row of the folder with id, 0 for all assets.
func (s *FolderSidebar) Select(id int64) {
	for i, item := range s.items {
		if item.folder.ID == id {
			s.list.Select(i)
			return
		}
	}
}

func (s *FolderSidebar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.list)
}

// folderIcon prefers the folder's own icon when the desktop set one.
func folderIcon(path string) fyne.Resource {
	if details, err := fancyfs.DetailsForFolder(storage.NewFileURI(path)); err == nil && details != nil && details.BackgroundResource != nil {
		return details.BackgroundResource
	}
	return theme.FolderIcon()
}

// DefaultAssetFolder returns the user's pictures folder, or the home folder
// when it cannot be found.
func DefaultAssetFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := "Pictures"
	if dir := userDir(home, name); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return home
}

func userDir(home, name string) string {
	if runtime.GOOS != "linux" && runtime.GOOS != "openbsd" && runtime.GOOS != "freebsd" && runtime.GOOS != "netbsd" {
		return filepath.Join(home, name)
	}

	const cmdName = "xdg-user-dir"
	if _, err := exec.LookPath(cmdName); err != nil {
		return filepath.Join(home, name)
	}
	out, err := exec.Command(cmdName, strings.ToUpper(name)).Output()
	if err != nil {
		return filepath.Join(home, name)
	}

	dir := filepath.Clean(strings.TrimSpace(string(out)))
	// xdg-user-dir answers with the home folder for unset entries.
	if dir == filepath.Clean(home) {
		return filepath.Join(home, name)
	}
	return dir
}
