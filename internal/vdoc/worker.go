package vdoc

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// parallelThreshold and minParallelDocuments mirror
// async_detection.rs's PARALLEL_THRESHOLD_MICROS / MIN_PARALLEL_DOCUMENTS:
// below both, goroutine fan-out costs more than the detection work itself.
const (
	parallelThresholdMicros = 100
	minParallelDocuments    = 5
)

// DetectionRequest is one document's worth of detection work, submitted to
// a Worker's request channel.
type DetectionRequest struct {
	ID       uuid.UUID
	URI      string
	Source   string
	Doc      ir.DocumentIR
	response chan DetectionResult
}

// DetectionResult is what a Worker reports back for a DetectionRequest.
type DetectionResult struct {
	ID      uuid.UUID
	URI     string
	Regions []Region
	Elapsed time.Duration
}

// Worker runs virtual-document detection on a background goroutine so
// parsing/regex work never blocks the LSP server's main request loop.
// Grounded on `async_detection.rs`'s spawn_detection_worker: a request
// channel (buffered to 64 requests; Detect blocks while it is full)
// drained into batches, each batch adaptively run
// sequentially or fanned out across goroutines depending on estimated
// work size.
type Worker struct {
	registry *DetectorRegistry
	requests chan DetectionRequest
	done     chan struct{}
}

// NewWorker starts a background worker processing detection requests
// against registry. Call Stop to shut it down.
func NewWorker(registry *DetectorRegistry) *Worker {
	w := &Worker{
		registry: registry,
		requests: make(chan DetectionRequest, 64),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Detect submits a detection request and returns a channel that receives
// exactly one DetectionResult.
func (w *Worker) Detect(uri, source string, doc ir.DocumentIR) <-chan DetectionResult {
	response := make(chan DetectionResult, 1)
	w.requests <- DetectionRequest{ID: uuid.New(), URI: uri, Source: source, Doc: doc, response: response}
	return response
}

// Stop signals the worker to finish processing queued requests and exit.
func (w *Worker) Stop() {
	close(w.requests)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)

	for req := range w.requests {
		batch := []DetectionRequest{req}
		batch = drainPending(w.requests, batch)
		w.processBatch(batch)
	}
}

// drainPending opportunistically collects any requests already queued
// behind the one that woke the worker, the Go equivalent of the source's
// try_recv loop: it never blocks waiting for more.
func drainPending(requests chan DetectionRequest, batch []DetectionRequest) []DetectionRequest {
	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return batch
			}
			batch = append(batch, req)
		default:
			return batch
		}
	}
}

func (w *Worker) processBatch(batch []DetectionRequest) {
	if shouldParallelize(batch) {
		var wg sync.WaitGroup
		wg.Add(len(batch))
		for _, req := range batch {
			req := req
			go func() {
				defer wg.Done()
				w.detectOne(req)
			}()
		}
		wg.Wait()
		return
	}

	for _, req := range batch {
		w.detectOne(req)
	}
}

func (w *Worker) detectOne(req DetectionRequest) {
	start := time.Now()
	regions := w.registry.DetectAll(req.Source, req.Doc)
	req.response <- DetectionResult{
		ID:      req.ID,
		URI:     req.URI,
		Regions: regions,
		Elapsed: time.Since(start),
	}
}

// estimateBatchWorkMicros estimates a batch's total detection work, in
// microseconds, using the source's own benchmark-derived formula: ~10µs
// fixed overhead per document plus ~0.25µs per source byte.
func estimateBatchWorkMicros(batch []DetectionRequest) uint64 {
	var totalBytes uint64
	for _, req := range batch {
		totalBytes += uint64(len(req.Source))
	}
	return uint64(len(batch))*10 + totalBytes/4
}

// shouldParallelize decides between sequential and fanned-out processing
// for one batch, per §4.10's heuristic: fewer than 5 documents, or less
// than 100µs of estimated work, stays sequential.
func shouldParallelize(batch []DetectionRequest) bool {
	if len(batch) < minParallelDocuments {
		return false
	}
	return estimateBatchWorkMicros(batch) >= parallelThresholdMicros
}
