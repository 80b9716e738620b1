/*
Package wm is the window manager state engine behind the shell.

It tracks every open simulated application window and keeps stacking
order, focus, visibility and geometry consistent across open, close,
focus, minimize, maximize and restore.

Every command is synchronous and applied atomically under a single lock.
Commands that name an unknown window id are silent no-ops: the shell may
hold stale ids (a close racing a focus from a timer) and that is not an
error.

Basic usage:

	m := wm.NewManager(wm.Options{
		Policy:   geometry.DefaultPolicy(),
		Viewport: viewport.NewStatic(1920, 1080),
	})
	m.Open("files", "Files", "FileManager", nil, nil)
	m.Maximize("files")
	for _, w := range m.Windows() {
		// render w
	}
*/
package wm
