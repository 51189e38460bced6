// Package scraper runs the wallpaper pipeline for one session.
//
// A run walks the listing page by page, then resolves links in three
// fan-out stages, each finished before the next begins:
//
//	listing pages  -> referer links   (ul.gallery anchors)
//	referer pages  -> image pages     (download button)
//	image pages    -> image URLs      (full-size <img>)
//	image URLs     -> files on disk   (download worker pool)
//
// and finally renumbers the files in the session directory. A failure on a
// single item is logged and counted; it never aborts the rest of the batch.
//
//	s := scraper.New(cfg)
//	summary, err := s.Run(ctx, session.New("nature", cfg.Output.RootDirectory, cfg.Site.Headers))
package scraper
