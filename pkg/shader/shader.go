// Package shader provides the schema for material shader descriptors: a
// named effect made of ordered render passes, each pairing fixed-function
// draw state with embedded vertex/fragment shader source, plus the external
// bind points (textures, uniform values) the engine fills in at link time.
//
// The package only deals with the descriptor data. Compiling the embedded
// source and enforcing that every identifier it references is declared is
// the engine's job.
package shader

import "fmt"

// Descriptor is a complete material effect definition.
type Descriptor struct {
	Name      string
	Resources []Resource
	Passes    []RenderPass
}

// FindPass returns the pass with the given name, if present.
func (d *Descriptor) FindPass(name string) (*RenderPass, bool) {
	for i := range d.Passes {
		if d.Passes[i].Name == name {
			return &d.Passes[i], true
		}
	}
	return nil, false
}

// FindResource returns the resource with the given name, if present.
func (d *Descriptor) FindResource(name string) (*Resource, bool) {
	for i := range d.Resources {
		if d.Resources[i].Name == name {
			return &d.Resources[i], true
		}
	}
	return nil, false
}

// RenderPass is one draw invocation: fixed-function state plus a shader
// program. Passes execute in the order they are declared.
type RenderPass struct {
	Name           string
	DrawParameters DrawParameters
	VertexShader   string
	FragmentShader string
}

// Resource is an externally bound shader input.
type Resource struct {
	Name    string
	Kind    ResourceKind
	Binding int
}

// ResourceKind describes what a resource slot holds. Implementations:
// SamplerKind, FloatKind, IntKind, BoolKind, VectorKind, MatrixKind.
type ResourceKind interface {
	isResourceKind()
}

// SamplerFallback selects the built-in texture used when a sampler slot has
// no texture bound.
type SamplerFallback int

const (
	FallbackWhite SamplerFallback = iota
	FallbackBlack
	FallbackNormal
)

// SamplerKind is a texture slot. Default optionally names a texture asset
// bound when the material does not override the slot.
type SamplerKind struct {
	Default  string
	Fallback SamplerFallback
}

// FloatKind is a scalar uniform with an optional default.
type FloatKind struct {
	HasDefault bool
	Default    float64
}

// IntKind is an integer uniform with an optional default.
type IntKind struct {
	HasDefault bool
	Default    int64
}

// BoolKind is a boolean uniform with an optional default.
type BoolKind struct {
	HasDefault bool
	Default    bool
}

// VectorKind is a float vector uniform of 2, 3 or 4 components. Default is
// empty or exactly Size long.
type VectorKind struct {
	Size    int
	Default []float64
}

// MatrixKind is a square float matrix uniform of Size x Size components.
// A nil Default means identity.
type MatrixKind struct {
	Size    int
	Default []float64
}

func (SamplerKind) isResourceKind() {}
func (FloatKind) isResourceKind()   {}
func (IntKind) isResourceKind()     {}
func (BoolKind) isResourceKind()    {}
func (VectorKind) isResourceKind()  {}
func (MatrixKind) isResourceKind()  {}

// DrawParameters is the fixed-function pipeline state of one pass. Optional
// tests are nil when disabled.
type DrawParameters struct {
	CullFace    *CullFace
	ColorWrite  ColorMask
	DepthWrite  bool
	StencilTest *StencilFunc
	DepthTest   *CompareFunc
	Blend       *BlendParameters
	StencilOp   StencilOp
	ScissorBox  *ScissorBox
}

// DefaultDrawParameters returns the state a pass gets when fields are left
// out of the descriptor: write everything, test depth with Less, no culling,
// no blending.
func DefaultDrawParameters() DrawParameters {
	depthTest := CompareLess
	return DrawParameters{
		ColorWrite: ColorMask{Red: true, Green: true, Blue: true, Alpha: true},
		DepthWrite: true,
		DepthTest:  &depthTest,
		StencilOp:  DefaultStencilOp(),
	}
}

// ColorMask enables or disables writes per color channel.
type ColorMask struct {
	Red   bool
	Green bool
	Blue  bool
	Alpha bool
}

// CullFace selects which triangle side is discarded.
type CullFace int

const (
	CullBack CullFace = iota
	CullFront
)

// CompareFunc is a depth/stencil comparison.
type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessOrEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterOrEqual
	CompareAlways
)

// BlendFactor is a source or destination blending coefficient.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
	BlendSrcAlphaSaturate
)

// BlendMode is a blending equation operator.
type BlendMode int

const (
	BlendAdd BlendMode = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// BlendFunc holds the RGB and alpha blend factors of a pass.
type BlendFunc struct {
	SFactor      BlendFactor
	DFactor      BlendFactor
	AlphaSFactor BlendFactor
	AlphaDFactor BlendFactor
}

// NewBlendFunc builds a BlendFunc using the same factors for the color and
// alpha channels.
func NewBlendFunc(src, dst BlendFactor) BlendFunc {
	return BlendFunc{SFactor: src, DFactor: dst, AlphaSFactor: src, AlphaDFactor: dst}
}

// BlendEquation holds the per-channel blend operators.
type BlendEquation struct {
	RGB   BlendMode
	Alpha BlendMode
}

// BlendParameters is the full blending state of a pass.
type BlendParameters struct {
	Func     BlendFunc
	Equation BlendEquation
}

// StencilFunc is the stencil test configuration.
type StencilFunc struct {
	Func CompareFunc
	Ref  uint32
	Mask uint32
}

// StencilAction is what happens to a stencil value after a test.
type StencilAction int

const (
	StencilKeep StencilAction = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilIncrWrap
	StencilDecr
	StencilDecrWrap
	StencilInvert
)

// StencilOp describes stencil buffer updates for the fail/zfail/zpass cases.
type StencilOp struct {
	Fail      StencilAction
	ZFail     StencilAction
	ZPass     StencilAction
	WriteMask uint32
}

// DefaultStencilOp keeps the stencil buffer untouched with all write bits
// enabled.
func DefaultStencilOp() StencilOp {
	return StencilOp{
		Fail:      StencilKeep,
		ZFail:     StencilKeep,
		ZPass:     StencilKeep,
		WriteMask: 0xFFFF_FFFF,
	}
}

// ScissorBox restricts rendering to a screen-space rectangle.
type ScissorBox struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

func (f SamplerFallback) String() string {
	switch f {
	case FallbackWhite:
		return "White"
	case FallbackBlack:
		return "Black"
	case FallbackNormal:
		return "Normal"
	default:
		return fmt.Sprintf("SamplerFallback(%d)", int(f))
	}
}

func (c CullFace) String() string {
	switch c {
	case CullBack:
		return "Back"
	case CullFront:
		return "Front"
	default:
		return fmt.Sprintf("CullFace(%d)", int(c))
	}
}

func (c CompareFunc) String() string {
	if name, ok := reverseLookup(compareFuncs, c); ok {
		return name
	}
	return fmt.Sprintf("CompareFunc(%d)", int(c))
}

func (f BlendFactor) String() string {
	if name, ok := reverseLookup(blendFactors, f); ok {
		return name
	}
	return fmt.Sprintf("BlendFactor(%d)", int(f))
}

func (m BlendMode) String() string {
	if name, ok := reverseLookup(blendModes, m); ok {
		return name
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

func (a StencilAction) String() string {
	if name, ok := reverseLookup(stencilActions, a); ok {
		return name
	}
	return fmt.Sprintf("StencilAction(%d)", int(a))
}

func reverseLookup[T comparable](table map[string]T, v T) (string, bool) {
	for name, val := range table {
		if val == v {
			return name, true
		}
	}
	return "", false
}

var compareFuncs = map[string]CompareFunc{
	"Never":          CompareNever,
	"Less":           CompareLess,
	"Equal":          CompareEqual,
	"LessOrEqual":    CompareLessOrEqual,
	"Greater":        CompareGreater,
	"NotEqual":       CompareNotEqual,
	"GreaterOrEqual": CompareGreaterOrEqual,
	"Always":         CompareAlways,
}

var blendFactors = map[string]BlendFactor{
	"Zero":                  BlendZero,
	"One":                   BlendOne,
	"SrcColor":              BlendSrcColor,
	"OneMinusSrcColor":      BlendOneMinusSrcColor,
	"DstColor":              BlendDstColor,
	"OneMinusDstColor":      BlendOneMinusDstColor,
	"SrcAlpha":              BlendSrcAlpha,
	"OneMinusSrcAlpha":      BlendOneMinusSrcAlpha,
	"DstAlpha":              BlendDstAlpha,
	"OneMinusDstAlpha":      BlendOneMinusDstAlpha,
	"ConstantColor":         BlendConstantColor,
	"OneMinusConstantColor": BlendOneMinusConstantColor,
	"ConstantAlpha":         BlendConstantAlpha,
	"OneMinusConstantAlpha": BlendOneMinusConstantAlpha,
	"SrcAlphaSaturate":      BlendSrcAlphaSaturate,
}

var blendModes = map[string]BlendMode{
	"Add":             BlendAdd,
	"Subtract":        BlendSubtract,
	"ReverseSubtract": BlendReverseSubtract,
	"Min":             BlendMin,
	"Max":             BlendMax,
}

var stencilActions = map[string]StencilAction{
	"Keep":     StencilKeep,
	"Zero":     StencilZero,
	"Replace":  StencilReplace,
	"Incr":     StencilIncr,
	"IncrWrap": StencilIncrWrap,
	"Decr":     StencilDecr,
	"DecrWrap": StencilDecrWrap,
	"Invert":   StencilInvert,
}

var samplerFallbacks = map[string]SamplerFallback{
	"White":  FallbackWhite,
	"Black":  FallbackBlack,
	"Normal": FallbackNormal,
}

var cullFaces = map[string]CullFace{
	"Back":  CullBack,
	"Front": CullFront,
}
