// package loader performs asynchronous dataset loads against a point-cloud
// engine without blocking the frame loop.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/surveyviz/pointglobe/engine/pointcloud"
)

// Result is the single-shot outcome of a dataset load. Failure is a value,
// not a panic: callers render an error state and keep the globe-only view
// usable.
type Result struct {
	// Handle is the attached dataset on success, nil on failure.
	Handle *pointcloud.Handle

	// Err is the load failure, nil on success.
	Err error
}

// Failed reports whether the load ended in failure.
//
// Returns:
//   - bool: true if Err is set
func (r Result) Failed() bool {
	return r.Err != nil
}

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	mu      sync.Mutex
	pool    worker.DynamicWorkerPool
	workers int
	taskID  int
}

// Loader runs dataset loads on a worker pool so the render loop keeps ticking
// globe-only frames while a load is outstanding.
type Loader interface {
	// Load issues an asynchronous load of the dataset at url. On success the
	// dataset is given the default appearance, attached to the engine's
	// scene, and the camera is fitted to its bounds before the result is
	// delivered. A canceled context abandons the load without attaching
	// anything, so a torn-down session never feeds a destroyed engine.
	//
	// Parameters:
	//   - ctx: cancels the load if the session ends first
	//   - eng: the point-cloud engine receiving the dataset
	//   - url: manifest location
	//   - name: display name for the dataset
	//
	// Returns:
	//   - <-chan Result: delivers exactly one Result, then is closed
	Load(ctx context.Context, eng pointcloud.PointCloudEngineAPI, url, name string) <-chan Result
}

var _ Loader = &loaderImpl{}

// NewLoader creates a Loader with the provided options.
//
// Parameters:
//   - options: functional options for loader configuration
//
// Returns:
//   - Loader: the newly created loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{
		workers: 2,
	}
	for _, opt := range options {
		opt(l)
	}
	// Small queue: a session loads one dataset at a time, headroom covers
	// back-to-back dataset swaps.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 16, 1*time.Second)
	return l
}

func (l *loaderImpl) Load(ctx context.Context, eng pointcloud.PointCloudEngineAPI, url, name string) <-chan Result {
	out := make(chan Result, 1)

	l.mu.Lock()
	id := l.taskID
	l.taskID++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer close(out)

			handle, err := eng.LoadDataset(ctx, url, name)
			if err != nil {
				err = fmt.Errorf("loading dataset %q from %s: %w", name, url, err)
				out <- Result{Err: err}
				return nil, err
			}

			// The session may have been torn down while the fetch was in
			// flight; attaching now would hand the dataset to a destroyed
			// engine.
			select {
			case <-ctx.Done():
				out <- Result{Err: ctx.Err()}
				return nil, ctx.Err()
			default:
			}

			handle.Appearance = pointcloud.DefaultAppearance()
			eng.AttachDataset(handle)
			eng.FitToBounds(handle.Bounds)

			out <- Result{Handle: handle}
			return handle, nil
		},
	})

	return out
}
