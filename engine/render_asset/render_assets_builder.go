package render_asset

// RenderAssetsBuilderOption is a functional option used to configure a RenderAssets during construction.
type RenderAssetsBuilderOption[A, P any] func(*renderAssets[A, P])

// WithReleaser sets the function that frees a prepared asset once it is no longer in flight.
//
// Parameters:
//   - release: the release function
//
// Returns:
//   - RenderAssetsBuilderOption[A, P]: a function that sets the releaser
func WithReleaser[A, P any](release func(P)) RenderAssetsBuilderOption[A, P] {
	return func(r *renderAssets[A, P]) {
		r.release = release
	}
}

// WithCloner sets the function used to snapshot an asset during extraction. The default is a
// shallow struct copy, which is only safe for assets without shared slices or maps.
//
// Parameters:
//   - clone: the snapshot function
//
// Returns:
//   - RenderAssetsBuilderOption[A, P]: a function that sets the cloner
func WithCloner[A, P any](clone func(*A) *A) RenderAssetsBuilderOption[A, P] {
	return func(r *renderAssets[A, P]) {
		r.clone = clone
	}
}

// WithFramesInFlight sets how many frames a retired entry is kept before release.
//
// Parameters:
//   - n: the number of frames the GPU may still be processing
//
// Returns:
//   - RenderAssetsBuilderOption[A, P]: a function that sets the frames in flight
func WithFramesInFlight[A, P any](n int) RenderAssetsBuilderOption[A, P] {
	return func(r *renderAssets[A, P]) {
		if n > 0 {
			r.framesInFlight = uint64(n)
		}
	}
}
