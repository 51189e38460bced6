// Package storage names, writes and renumbers downloaded wallpapers.
//
// Files are written as <prefix>_<token>.<ext>, where token and ext come from
// the image URL. Writes go through a temporary file in the same directory and
// an atomic rename, so a partial download never appears under its final name.
//
//	name, err := storage.ParseImageURL("https://c4.wallpaperflare.com/wallpaper/a/b/c/sky-42.jpg")
//	mgr, err := storage.NewManager(dir, "wallpaper_flare")
//	path, err := mgr.SaveImage(body, mgr.FileName(name)) // dir/wallpaper_flare_42.jpg
//
// Rename and RenameOrdered replace each token with the file's position in the
// listing. Renames are staged through temporary names, so permutations such as
// 1<->0 never overwrite a file, and a directory that is already sequential is
// left untouched. A rename that cannot complete restores every original name.
package storage
