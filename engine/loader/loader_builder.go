package loader

type LoaderBuilderOption func(*loaderImpl)

// WithWorkers sets the worker pool size used for dataset loads.
//
// Parameters:
//   - n: number of workers (values below 1 are ignored)
//
// Returns:
//   - LoaderBuilderOption: a function that sets the worker count
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if n >= 1 {
			l.workers = n
		}
	}
}
