package renderer

import (
	_ "embed"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed billboard.wgsl
var billboardShaderBody string

//go:embed billboard_vertex.wgsl
var billboardVertexSource string

// billboardShader pre-processes the billboard module and checks that it
// declares exactly the camera binding the pipeline layout provides.
func billboardShader() (string, error) {
	p := shader.NewPreProcessor(shader.WithStruct("billboard_vertex", billboardVertexSource, "VertexIn"))
	src, err := p.Process(billboardShaderBody)
	if err != nil {
		return "", fmt.Errorf("failed to pre-process billboard shader: %w", err)
	}
	decls := p.Declarations()
	if len(decls) != 1 || *decls[0].Group != 0 || *decls[0].Binding != 0 || decls[0].Args[2] != shader.AnnotationArgCamera {
		return "", fmt.Errorf("billboard shader must declare only the camera at group 0 binding 0")
	}
	return src, nil
}

// quadCorners is a unit quad in billboard space, drawn as two CCW triangles.
var (
	quadCorners = []float32{-1, -1, 1, -1, 1, 1, -1, 1}
	quadIndices = []uint16{0, 1, 2, 0, 2, 3}
)

// minInstanceCapacity is the smallest instance buffer allocated, in instances.
const minInstanceCapacity = 256

type wgpuRendererBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	configured  bool

	pipeline      *wgpu.RenderPipeline
	cameraLayout  *wgpu.BindGroupLayout
	cameraBuffer  *wgpu.Buffer
	cameraGroup   *wgpu.BindGroup
	quadBuffer    *wgpu.Buffer
	indexBuffer   *wgpu.Buffer
	instances     *wgpu.Buffer
	instanceSlots int
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, mode PresentMode) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		sampleCount: sampleCount,
	}
	b.SetPresentMode(mode)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createPipeline(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.createStaticBuffers(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *wgpuRendererBackendImpl) createPipeline() error {
	source, err := billboardShader()
	if err != nil {
		return err
	}
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Billboard Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile billboard shader: %w", err)
	}
	defer module.Release()

	var uniform camera.GPUCameraUniform
	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(uniform.Size()),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create camera bind group layout: %w", err)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Billboard Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create billboard pipeline layout: %w", err)
	}
	defer layout.Release()

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Billboard Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 8,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(Instance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create billboard pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createStaticBuffers() error {
	var err error
	if b.quadBuffer, err = b.upload("Billboard Quad", common.SliceToBytes(quadCorners), wgpu.BufferUsageVertex); err != nil {
		return err
	}
	if b.indexBuffer, err = b.upload("Billboard Indices", common.SliceToBytes(quadIndices), wgpu.BufferUsageIndex); err != nil {
		return err
	}

	var uniform camera.GPUCameraUniform
	if b.cameraBuffer, err = b.upload("Camera Uniform", uniform.Marshal(), wgpu.BufferUsageUniform); err != nil {
		return err
	}
	b.cameraGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: b.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create camera bind group: %w", err)
	}
	return b.ensureInstanceCapacity(minInstanceCapacity)
}

// upload creates a buffer sized to data and writes data into it.
func (b *wgpuRendererBackendImpl) upload(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// ensureInstanceCapacity grows the instance buffer to hold at least n instances,
// doubling so a slowly growing population does not reallocate every frame.
func (b *wgpuRendererBackendImpl) ensureInstanceCapacity(n int) error {
	if n <= b.instanceSlots {
		return nil
	}
	slots := max(b.instanceSlots, minInstanceCapacity)
	for slots < n {
		slots *= 2
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Billboard Instance Buffer",
		Size:  uint64(slots) * uint64(unsafe.Sizeof(Instance{})),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to grow instance buffer to %d: %w", slots, err)
	}
	if b.instances != nil {
		b.instances.Release()
	}
	b.instances = buf
	b.instanceSlots = slots
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.releaseTargets()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	count := uint32(b.sampleCount)
	var err error
	if count > 1 {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		if b.msaaTextureView, err = b.msaaTexture.CreateView(nil); err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	if b.depthTextureView, err = b.depthTexture.CreateView(nil); err != nil {
		panic(err)
	}
	b.configured = true
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) Draw(frame Frame) error {
	if !b.configured {
		return fmt.Errorf("surface not configured")
	}
	if err := b.ensureInstanceCapacity(len(frame.Instances)); err != nil {
		return err
	}
	b.queue.WriteBuffer(b.cameraBuffer, 0, frame.Camera.Marshal())
	if len(frame.Instances) > 0 {
		b.queue.WriteBuffer(b.instances, 0, common.SliceToBytes(frame.Instances))
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(frame.Clear[0]),
			G: float64(frame.Clear[1]),
			B: float64(frame.Clear[2]),
			A: float64(frame.Clear[3]),
		},
	}
	if b.sampleCount > 1 {
		color.View = b.msaaTextureView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	if len(frame.Instances) > 0 {
		pass.SetPipeline(b.pipeline)
		pass.SetBindGroup(0, b.cameraGroup, nil)
		pass.SetVertexBuffer(0, b.quadBuffer, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, b.instances, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(len(quadIndices)), uint32(len(frame.Instances)), 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
	b.configured = false
}

func (b *wgpuRendererBackendImpl) Release() {
	b.releaseTargets()
	for _, buf := range []*wgpu.Buffer{b.instances, b.cameraBuffer, b.indexBuffer, b.quadBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	b.instances, b.cameraBuffer, b.indexBuffer, b.quadBuffer = nil, nil, nil, nil
	b.instanceSlots = 0
	if b.cameraGroup != nil {
		b.cameraGroup.Release()
		b.cameraGroup = nil
	}
	if b.cameraLayout != nil {
		b.cameraLayout.Release()
		b.cameraLayout = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
