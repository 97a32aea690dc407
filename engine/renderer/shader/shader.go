// Package shader loads WGSL shader modules, runs the @oxy: pre-processor over them and
// parses the entry points, vertex inputs and resource bindings that pipelines are checked
// against. Shaders loaded from a path can be reloaded in place.
package shader

import (
	"fmt"
	"os"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies a shader stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// shader is the implementation of the Shader interface.
type shader struct {
	mu *sync.RWMutex

	key        string
	path       string
	rawSource  string
	source     string
	generation uint64

	module       *wgpu.ShaderModuleDescriptor
	entryPoints  map[ShaderType]string
	vertexInputs []VertexInput
	layouts      map[int]wgpu.BindGroupLayoutDescriptor
	structSizes  map[string]uint64
	declarations []Annotation

	ppOptions []PreProcessorOption
	pp        PreProcessor
}

// Shader is a parsed WGSL module holding both the vertex and the fragment entry point.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Path returns the file the shader was loaded from, or "" for in-memory sources.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Module returns the shader module descriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// EntryPoint returns the entry point name of a stage, or "" if the module has none.
	//
	// Parameters:
	//   - stage: ShaderTypeVertex or ShaderTypeFragment
	//
	// Returns:
	//   - string: the function name
	EntryPoint(stage ShaderType) string

	// VertexInputs returns the @location fields of the module's vertex input struct, sorted by
	// location.
	//
	// Returns:
	//   - []VertexInput: the vertex inputs
	VertexInputs() []VertexInput

	// BindGroupLayoutDescriptors returns the resource declarations of the module as layout
	// descriptors keyed by group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// StructSize returns the byte size of a struct declared by the module.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false if the struct is unknown or its layout could not be resolved
	StructSize(name string) (uint64, bool)

	// Declarations returns the @oxy:group annotations of the module.
	//
	// Returns:
	//   - []Annotation: the binding declarations in source order
	Declarations() []Annotation

	// Generation is incremented by every successful Reload.
	//
	// Returns:
	//   - uint64: the generation, starting at 1
	Generation() uint64

	// Reload re-reads the source file and re-parses it. On failure the previous source stays
	// active.
	//
	// Returns:
	//   - error: an error if the shader has no path or the new source fails to process
	Reload() error
}

var _ Shader = &shader{}

// NewShader creates a Shader from a source file or an in-memory source. It panics if no
// source was provided or the initial source cannot be processed.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - options: functional options providing the source and pre-processor registrations
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, options ...ShaderBuilderOption) Shader {
	s := &shader{
		mu:  &sync.RWMutex{},
		key: key,
	}
	for _, option := range options {
		option(s)
	}
	s.pp = NewPreProcessor(s.ppOptions...)

	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read source file %q: %v", s.path, err))
		}
		s.rawSource = string(data)
	}
	if s.rawSource == "" {
		panic(fmt.Sprintf("shader: %s must have a source provided via WithSource or WithSourceFromPath", key))
	}
	if err := s.parse(s.rawSource); err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", key, err))
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.module
}

func (s *shader) EntryPoint(stage ShaderType) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entryPoints[stage]
}

func (s *shader) VertexInputs() []VertexInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexInputs
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layouts
}

func (s *shader) StructSize(name string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	size, ok := s.structSizes[name]
	return size, ok
}

func (s *shader) Declarations() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.declarations
}

func (s *shader) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *shader) Reload() error {
	if s.path == "" {
		return fmt.Errorf("shader: %s has no source file to reload", s.key)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("shader: reload %s: %w", s.key, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("shader: reload %s: source file is empty", s.key)
	}
	if err := s.parse(string(data)); err != nil {
		return fmt.Errorf("shader: reload %s: %w", s.key, err)
	}
	return nil
}

// parse processes raw and swaps in the results only on success.
func (s *shader) parse(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.pp.Process(raw)
	if err != nil {
		return err
	}
	layouts, sizes := parseBindGroupLayouts(source, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)

	s.rawSource = raw
	s.source = source
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	s.entryPoints = map[ShaderType]string{
		ShaderTypeVertex:   parseEntryPoint(source, ShaderTypeVertex),
		ShaderTypeFragment: parseEntryPoint(source, ShaderTypeFragment),
	}
	s.vertexInputs = parseVertexInputs(source)
	s.layouts = layouts
	s.structSizes = sizes
	s.declarations = append([]Annotation(nil), s.pp.Declarations()...)
	s.generation++
	return nil
}
