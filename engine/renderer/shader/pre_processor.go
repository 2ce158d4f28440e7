// pre_processor.go implements the WGSL shader pre-processor. It replaces @oxy:
// annotations with registered struct sources or generated binding declarations
// and collects the declarations so the renderer can check its bind group layout
// against the shader.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
)

// registryEntry pairs a WGSL struct source with the type name emitted in
// generated declarations.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces include annotations with struct sources and group
	// annotations with @group/@binding declarations.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: error if an annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group annotations collected by the most recent
	// Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with the camera uniform registered.
// Additional structs are registered with WithStruct.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera: {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			// WGSL rejects a struct declared twice
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			addrSpace, ok := p.addressSpaceRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown address space %q", a.Line, a.Args[0])
			}
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct type %q", a.Line, a.Args[2])
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
