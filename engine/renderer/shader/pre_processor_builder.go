package shader

// PreProcessorBuilderOption is a functional option for configuring a PreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithStruct registers a WGSL struct under key so that include and group
// annotations can reference it.
//
// Parameters:
//   - key: the annotation argument naming the struct
//   - source: the WGSL struct definition
//   - typeName: the WGSL type name declared by source
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithStruct(key AnnotationArg, source, typeName string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{Source: source, Type: typeName}
	}
}
