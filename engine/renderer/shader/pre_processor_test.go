package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIncludesAndDeclares(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include camera",
		"//@oxy:group 0 0 storage_uniform camera camera",
		"// a plain comment",
		"fn main() {}",
	}, "\n")

	p := NewPreProcessor()
	out, err := p.Process(src)
	require.NoError(t, err)

	assert.Contains(t, out, camera.GPUCameraUniformSource)
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	assert.Contains(t, out, "// a plain comment")
	assert.NotContains(t, out, annotationPrefix)

	decls := p.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 0, *decls[0].Group)
	assert.Equal(t, 0, *decls[0].Binding)
	assert.Equal(t, 2, decls[0].Line)
}

func TestProcessRegisteredStruct(t *testing.T) {
	const params = "struct Params { gain: f32 };"
	p := NewPreProcessor(WithStruct("params", params, "Params"))

	out, err := p.Process("//@oxy:include params\n//@oxy:include params\n//@oxy:group 1 2 storage_read params params")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, params))
	assert.Contains(t, out, "@group(1) @binding(2) var<storage, read> params: Params;")
}

func TestProcessResetsDeclarations(t *testing.T) {
	p := NewPreProcessor()
	_, err := p.Process("//@oxy:group 0 0 storage_uniform camera camera")
	require.NoError(t, err)
	_, err = p.Process("fn main() {}")
	require.NoError(t, err)
	assert.Empty(t, p.Declarations())
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "//@oxy:"},
		{"unknown annotation", "//@oxy:provider 0 0 material"},
		{"include arity", "//@oxy:include"},
		{"unknown include", "//@oxy:include light"},
		{"group arity", "//@oxy:group 0 0 storage_uniform camera"},
		{"bad group", "//@oxy:group x 0 storage_uniform camera camera"},
		{"negative binding", "//@oxy:group 0 -1 storage_uniform camera camera"},
		{"unknown address space", "//@oxy:group 0 0 storage_push camera camera"},
		{"unknown type", "//@oxy:group 0 0 storage_uniform light light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process("fn a() {}\n" + tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestAnnotationOutsideCommentIsIgnored(t *testing.T) {
	a, err := parseAnnotation(`let s = "@oxy:include camera";`, 1)
	require.NoError(t, err)
	assert.Nil(t, a)
}
