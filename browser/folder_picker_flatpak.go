//go:build flatpak && !windows && !android && !ios && !wasm && !js

package browser

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

// PickFolder asks the user for a folder to index. onPicked runs on the UI
// thread with an empty path when the user cancels.
func PickFolder(parent fyne.Window, onPicked func(path string, err error)) {
	options := &filechooser.OpenFileOptions{
		AcceptLabel:   lang.L("Open"),
		Directory:     true,
		CurrentFolder: DefaultAssetFolder(),
	}
	windowHandle := windowHandleForPortal(parent)

	go func() {
		uris, err := filechooser.OpenFile(windowHandle, lang.L("Open")+" "+lang.L("Folder"), options)
		path := ""
		if err == nil && len(uris) > 0 {
			var uri fyne.URI
			uri, err = storage.ParseURI(uris[0])
			if err == nil {
				path = uri.Path()
			}
		}
		fyne.Do(func() {
			onPicked(path, err)
		})
	}()
}

func windowHandleForPortal(window fyne.Window) string {
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	windowHandle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			windowHandle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return windowHandle
}
