// Package checkpoint remembers which images a download directory already holds.
//
// Downloaded files start out named after their URL token and are renumbered
// afterwards, so the file name alone cannot tell whether an image is already
// present. The checkpoint maps every image's token file name to the name it
// currently has on disk:
//
//	cp, err := checkpoint.Open(dir, "cats", log)
//	if file, ok := cp.Lookup("wallpaper_flare_123.jpg"); ok {
//	    // already downloaded, now called file
//	}
//	cp.Record("wallpaper_flare_456.jpg", "wallpaper_flare_456.jpg")
//	cp.Remap(report.Moves) // after storage.Rename
//	err = cp.Save()
//
// The checkpoint lives next to the images in a dot file, so it moves with
// the directory. It is written atomically through a temporary file.
package checkpoint
