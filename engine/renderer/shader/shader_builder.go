package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithSource sets an in-memory WGSL source, typically an embedded asset.
//
// Parameters:
//   - source: the raw WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.rawSource = source
	}
}

// WithSourceFromPath loads the WGSL source from a file. Shaders loaded from a file can be
// reloaded and watched.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source path
func WithSourceFromPath(path string) ShaderBuilderOption {
	return func(s *shader) {
		s.path = path
	}
}

// WithIncludes registers structs on the shader's pre-processor.
//
// Parameters:
//   - options: pre-processor registrations, see WithStruct
//
// Returns:
//   - ShaderBuilderOption: a function that adds the registrations
func WithIncludes(options ...PreProcessorOption) ShaderBuilderOption {
	return func(s *shader) {
		s.ppOptions = append(s.ppOptions, options...)
	}
}
