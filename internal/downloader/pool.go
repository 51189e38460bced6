package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/pipeline"
	"github.com/Memorem/wallpaperflare-parser/pkg/storage"
)

// Status is the outcome of one download job
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// DownloadJob is a single image to fetch
type DownloadJob struct {
	URL string
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Status   Status
	Path     string
	Error    error
	Duration time.Duration
	Size     int
}

// ImageFetcher downloads image bytes
type ImageFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImageStore persists images by file name
type ImageStore interface {
	FileName(name storage.ImageName) string
	Path(file string) string
	Exists(file string) bool
	SaveBytes(body []byte, file string) (string, error)
}

// History remembers images downloaded by earlier runs. Keys are the file
// names images get from their URL token; files are their current names.
type History interface {
	Lookup(key string) (file string, ok bool)
	Owner(file string) (key string, ok bool)
	Record(key, file string)
}

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers  int
	overwrite   bool
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      ImageFetcher
	store       ImageStore
	history     History
	logger      logger.Logger

	claimMu sync.Mutex
	claimed map[string]*claim
}

// claim serializes the jobs that map to the same image key
type claim struct {
	mu   sync.Mutex
	done bool
	path string
}

// NewWorkerPool creates a pool bound to ctx. numWorkers <= 0 means one per CPU.
// With overwrite off, images whose file already exists are skipped.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	client ImageFetcher,
	store ImageStore,
	overwrite bool,
	log logger.Logger,
) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	numWorkers = pipeline.Workers(numWorkers)
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		overwrite:   overwrite,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		store:       store,
		logger:      log.WithField("component", "downloader"),
		claimed:     make(map[string]*claim),
	}
}

// WithHistory makes the pool skip images recorded by h and record new ones
func (wp *WorkerPool) WithHistory(h History) *WorkerPool {
	wp.history = h
	return wp
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for in-flight jobs and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job. It fails once the pool's context is done.
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel; it is closed by Stop
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// Run downloads urls and returns one result per url in completion order.
// Once the pool's context is canceled, the remaining urls are not submitted
// and fail with the context error.
func (wp *WorkerPool) Run(urls []string) []DownloadResult {
	var (
		unsent    []string
		unsentErr error
	)
	submitted := make(chan struct{})

	wp.Start()
	go func() {
		defer close(submitted)
		defer wp.Stop()
		for i, u := range urls {
			if err := wp.Submit(DownloadJob{URL: u}); err != nil {
				unsent, unsentErr = urls[i:], err
				return
			}
		}
	}()

	results := make([]DownloadResult, 0, len(urls))
	for r := range wp.Results() {
		results = append(results, r)
	}

	<-submitted
	for _, u := range unsent {
		results = append(results, DownloadResult{
			Job:    DownloadJob{URL: u},
			Status: StatusFailed,
			Error:  unsentErr,
		})
	}
	return results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		var result DownloadResult
		if err := wp.ctx.Err(); err != nil {
			result = DownloadResult{Job: job, Status: StatusFailed, Error: err}
		} else {
			result = wp.processJob(job, id)
		}
		wp.resultQueue <- result
	}
}

// claimFor returns the claim of key, creating it on first use
func (wp *WorkerPool) claimFor(key string) *claim {
	wp.claimMu.Lock()
	defer wp.claimMu.Unlock()
	c, ok := wp.claimed[key]
	if !ok {
		c = &claim{}
		wp.claimed[key] = c
	}
	return c
}

func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job, Status: StatusFailed}
	defer func() {
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger.WithField("worker_id", workerID), job.URL, result.Path,
			result.Status == StatusSkipped, result.Error)
	}()

	name, err := storage.ParseImageURL(job.URL)
	if err != nil {
		result.Error = err
		return result
	}
	key := wp.store.FileName(name)

	// a second url with the same key waits for the first and only runs if it failed
	c := wp.claimFor(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		result.Status = StatusSkipped
		result.Path = c.path
		return result
	}

	file, skip := wp.target(key, name)
	result.Path = wp.store.Path(file)
	if skip {
		result.Status = StatusSkipped
		c.done, c.path = true, result.Path
		return result
	}

	data, err := wp.client.Download(wp.ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		return result
	}
	result.Size = len(data)

	if _, err := wp.store.SaveBytes(data, file); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		return result
	}
	if wp.history != nil {
		wp.history.Record(key, file)
	}

	result.Status = StatusDownloaded
	c.done, c.path = true, result.Path
	return result
}

// target picks the file an image is written to and reports whether the
// image is already present and can be skipped
func (wp *WorkerPool) target(key string, name storage.ImageName) (string, bool) {
	if wp.history != nil {
		if file, ok := wp.history.Lookup(key); ok {
			// overwrite in place so the image keeps its current number
			return file, !wp.overwrite
		}
		if owner, ok := wp.history.Owner(key); ok && owner != key {
			// the token name holds another image after renumbering
			return wp.freeName(name), false
		}
	}

	if !wp.overwrite && wp.store.Exists(key) {
		if wp.history != nil {
			wp.history.Record(key, key)
		}
		return key, true
	}
	return key, false
}

// freeName returns <prefix>_<token>~<n>.<ext> for the first n that is neither
// on disk nor recorded for another image
func (wp *WorkerPool) freeName(name storage.ImageName) string {
	for n := 1; ; n++ {
		file := wp.store.FileName(storage.ImageName{Token: fmt.Sprintf("%s~%d", name.Token, n), Ext: name.Ext})
		if wp.store.Exists(file) {
			continue
		}
		if _, owned := wp.history.Owner(file); owned {
			continue
		}
		return file
	}
}
