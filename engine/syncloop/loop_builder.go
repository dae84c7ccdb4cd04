package syncloop

type LoopBuilderOption func(*loopImpl)

// WithDistanceBound overrides the distance guard threshold: the maximum
// absolute x/y coordinate, in projected units, the camera or target may reach
// before the tick's sync is skipped.
//
// Parameters:
//   - bound: the guard threshold in projected length units
//
// Returns:
//   - LoopBuilderOption: a function that sets the distance bound
func WithDistanceBound(bound float64) LoopBuilderOption {
	return func(l *loopImpl) {
		l.distanceBound = bound
	}
}

// WithHeightEnvelope overrides the plausible height envelope, in meters above
// the ellipsoid, accepted by the height guard.
//
// Parameters:
//   - min: lowest accepted height in meters
//   - max: highest accepted height in meters
//
// Returns:
//   - LoopBuilderOption: a function that sets the envelope
func WithHeightEnvelope(min, max float64) LoopBuilderOption {
	return func(l *loopImpl) {
		l.minHeight = min
		l.maxHeight = max
	}
}

// WithUnitRatio overrides the factor converting the point cloud's vertical
// unit to meters. Defaults to the international foot.
//
// Parameters:
//   - ratio: meters per point-cloud length unit
//
// Returns:
//   - LoopBuilderOption: a function that sets the unit ratio
func WithUnitRatio(ratio float64) LoopBuilderOption {
	return func(l *loopImpl) {
		l.unitToMeters = ratio
	}
}
