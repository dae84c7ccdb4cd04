package bridge

// buildConfig holds Build-time configuration.
type buildConfig struct {
	provider ProjectionProvider
}

type BuildOption func(*buildConfig)

// WithProvider overrides the projection provider used to compile the CRS
// descriptor. Tests substitute an in-process provider here; the default is
// the PROJ-backed provider.
//
// Parameters:
//   - p: the provider to use (nil disables synchronization)
//
// Returns:
//   - BuildOption: a function that sets the provider
func WithProvider(p ProjectionProvider) BuildOption {
	return func(c *buildConfig) {
		c.provider = p
	}
}
