package compute

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// Bounds is one body's bounding sphere, packed as vec4 for the shader:
// xyz = position, w = radius.
type Bounds struct {
	X, Y, Z float32
	Radius  float32
}

// Pair indexes two bodies in the scanned slice that may overlap.
type Pair struct {
	A, B uint32
}

// Each thread tests one body against all higher indices: n*(n-1)/2 checks,
// no duplicate pairs.
const pairScanShader = `
struct Bounds {
    pos: vec3<f32>,
    radius: f32,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> bounds: array<Bounds>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> bodyCount: u32;

@compute @workgroup_size(256)
fn scan(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= bodyCount) {
        return;
    }

    let a = bounds[i];
    for (var j = i + 1u; j < bodyCount; j = j + 1u) {
        let b = bounds[j];

        let diff = a.pos - b.pos;
        let reach = a.radius + b.radius;
        if (dot(diff, diff) < reach * reach) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// PairScanner is the GPU broadphase: an O(n^2) bounding-sphere scan that
// beats the CPU grid once body counts are high enough to fill the device.
// The pipeline and bind group layout are built once at construction.
type PairScanner struct {
	system   *System
	pipeline *wgpu.ComputePipeline
	layout   *wgpu.BindGroupLayout

	boundsBuffer *Buffer
	pairBuffer   *Buffer
	countBuffer  *Buffer
	uniformBuf   *Buffer

	maxBodies uint32
	maxPairs  uint32
}

// NewPairScanner allocates buffers for up to maxBodies bodies and maxPairs
// output pairs. Requires a successful Initialize; returns an error when no
// compute device is available.
func NewPairScanner(maxBodies, maxPairs uint32) (*PairScanner, error) {
	sys := Get()
	if sys == nil {
		return nil, errors.New("compute system not initialized")
	}

	layout, err := sys.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "pairscan_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := sys.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "pairscan_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	defer pipelineLayout.Release()

	shader, err := sys.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "pairscan_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: pairScanShader},
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	defer shader.Release()

	pipeline, err := sys.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "pairscan_pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "scan",
		},
	})
	if err != nil {
		layout.Release()
		return nil, err
	}

	ps := &PairScanner{
		system:    sys,
		pipeline:  pipeline,
		layout:    layout,
		maxBodies: maxBodies,
		maxPairs:  maxPairs,
	}

	// vec4 per body, two u32 per pair, one u32 counter, one u32 uniform
	// (padded to 16 bytes for uniform alignment).
	if ps.boundsBuffer, err = sys.createBuffer("pairscan_bounds", uint64(maxBodies)*16,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		ps.Release()
		return nil, err
	}
	if ps.pairBuffer, err = sys.createBuffer("pairscan_pairs", uint64(maxPairs)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc); err != nil {
		ps.Release()
		return nil, err
	}
	if ps.countBuffer, err = sys.createBuffer("pairscan_count", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst); err != nil {
		ps.Release()
		return nil, err
	}
	if ps.uniformBuf, err = sys.createBuffer("pairscan_body_count", 16,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		ps.Release()
		return nil, err
	}

	return ps, nil
}

// Scan uploads bounds and returns every potentially overlapping pair.
// Input beyond the scanner capacity is truncated.
func (ps *PairScanner) Scan(bounds []Bounds) ([]Pair, error) {
	if len(bounds) == 0 {
		return nil, nil
	}
	if uint32(len(bounds)) > ps.maxBodies {
		bounds = bounds[:ps.maxBodies]
	}
	bodyCount := uint32(len(bounds))

	ps.system.writeBuffer(ps.boundsBuffer, wgpu.ToBytes(bounds))
	ps.system.writeBuffer(ps.countBuffer, wgpu.ToBytes([]uint32{0}))
	ps.system.writeBuffer(ps.uniformBuf, wgpu.ToBytes([]uint32{bodyCount, 0, 0, 0}))

	if err := ps.dispatch(bodyCount); err != nil {
		return nil, err
	}

	countData, err := ps.system.readBuffer(ps.countBuffer, 4)
	if err != nil {
		return nil, err
	}
	pairCount := wgpu.FromBytes[uint32](countData)[0]
	if pairCount == 0 {
		return nil, nil
	}
	if pairCount > ps.maxPairs {
		pairCount = ps.maxPairs // shader drops overflow writes
	}

	pairData, err := ps.system.readBuffer(ps.pairBuffer, uint64(pairCount)*8)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, pairCount)
	copy(pairs, wgpu.FromBytes[Pair](pairData))
	return pairs, nil
}

func (ps *PairScanner) dispatch(bodyCount uint32) error {
	device := ps.system.device

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "pairscan_bindgroup",
		Layout: ps.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: ps.boundsBuffer.buffer, Size: ps.boundsBuffer.size},
			{Binding: 1, Buffer: ps.pairBuffer.buffer, Size: ps.pairBuffer.size},
			{Binding: 2, Buffer: ps.countBuffer.buffer, Size: ps.countBuffer.size},
			{Binding: 3, Buffer: ps.uniformBuf.buffer, Size: ps.uniformBuf.size},
		},
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(ps.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups((bodyCount+255)/256, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commands.Release()

	ps.system.queue.Submit(commands)
	return nil
}

// Release frees the scanner's GPU resources.
func (ps *PairScanner) Release() {
	if ps.boundsBuffer != nil {
		ps.boundsBuffer.release()
	}
	if ps.pairBuffer != nil {
		ps.pairBuffer.release()
	}
	if ps.countBuffer != nil {
		ps.countBuffer.release()
	}
	if ps.uniformBuf != nil {
		ps.uniformBuf.release()
	}
	if ps.pipeline != nil {
		ps.pipeline.Release()
	}
	if ps.layout != nil {
		ps.layout.Release()
	}
}
