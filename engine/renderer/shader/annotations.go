// annotations.go defines the annotation types and parser for the Oxy WGSL shader
// pre-processor. Annotations are single-line WGSL comments prefixed with @oxy: that drive
// struct injection and bind group declaration. Struct types are not fixed: the packages
// that own GPU structs register them on the PreProcessor with WithStruct.
//
// Syntax:
//
//	//@oxy:include <struct_type>
//	//@oxy:group <group> <binding> <address_space> <var_name> <struct_type>
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation
	// site. It produces no declaration.
	//
	// Example: //@oxy:include view
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration and records
	// the annotation in the PreProcessor's declarations list.
	//
	// Example: //@oxy:group 0 0 storage_uniform view view
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is one parsed @oxy: line.
type Annotation struct {
	// Type is the annotation kind.
	Type AnnotationType

	// Args holds the positional arguments. For include: [struct_type]. For group:
	// [address_space, var_name, struct_type].
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group and Binding are set for AnnotationTypeBindingGroup only.
	Group   *int
	Binding *int
}

// AnnotationArg is a single annotation argument: a struct key, address space or variable name.
type AnnotationArg string

const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	annotationArgStorageTypeRead AnnotationArg = "storage_read"
)

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

// parseAnnotation parses line as an @oxy: annotation. Lines without the prefix return nil.
// known reports whether a struct key is registered.
//
// Parameters:
//   - line: the source line
//   - lineNum: the 1-based line number used in errors
//   - known: lookup of registered struct keys
//
// Returns:
//   - *Annotation: the parsed annotation or nil
//   - error: an error if the annotation is malformed or names an unknown struct
func parseAnnotation(line string, lineNum int, known func(AnnotationArg) bool) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !known(AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, name, struct type)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %w", lineNum, args[1], err)
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q: %w", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		if !known(AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
