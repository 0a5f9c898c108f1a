//go:build !flatpak || windows || android || ios || wasm || js

package browser

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// PickFolder asks the user for a folder to index. onPicked runs on the UI
// thread with an empty path when the user cancels.
func PickFolder(parent fyne.Window, onPicked func(path string, err error)) {
	d := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			onPicked("", err)
			return
		}
		onPicked(dir.Path(), nil)
	}, parent)

	if start := DefaultAssetFolder(); start != "" {
		if dir, err := storage.ListerForURI(storage.NewFileURI(start)); err == nil {
			d.SetLocation(dir)
		}
	}
	d.Show()
}
