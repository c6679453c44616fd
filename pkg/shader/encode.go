package shader

import (
	"fmt"

	"github.com/coldforge/outpost/pkg/ron"
)

// Encode serializes a descriptor in the canonical schema. Descriptors read
// from legacy files come out migrated.
func Encode(d *Descriptor) []byte {
	return ron.Marshal(encodeValue(d))
}

func encodeValue(d *Descriptor) ron.Value {
	root := ron.Struct{}
	root.Fields = append(root.Fields, ron.Field{Name: "name", Value: ron.String(d.Name)})

	resources := ron.List{}
	for _, r := range d.Resources {
		resources = append(resources, ron.Struct{Fields: []ron.Field{
			{Name: "name", Value: ron.String(r.Name)},
			{Name: "kind", Value: encodeKind(r.Kind)},
			{Name: "binding", Value: ron.Int(r.Binding)},
		}})
	}
	root.Fields = append(root.Fields, ron.Field{Name: "resources", Value: resources})

	passes := ron.List{}
	for _, p := range d.Passes {
		passes = append(passes, ron.Struct{Fields: []ron.Field{
			{Name: "name", Value: ron.String(p.Name)},
			{Name: "draw_parameters", Value: encodeDrawParameters(p.DrawParameters)},
			{Name: "vertex_shader", Value: ron.String(p.VertexShader)},
			{Name: "fragment_shader", Value: ron.String(p.FragmentShader)},
		}})
	}
	root.Fields = append(root.Fields, ron.Field{Name: "passes", Value: passes})
	return root
}

func encodeKind(k ResourceKind) ron.Value {
	switch t := k.(type) {
	case SamplerKind:
		s := ron.Struct{Name: "Sampler"}
		if t.Default != "" {
			s.Fields = append(s.Fields, ron.Field{Name: "default", Value: ron.Some(ron.String(t.Default))})
		}
		s.Fields = append(s.Fields, ron.Field{Name: "fallback", Value: ron.Ident(t.Fallback.String())})
		return s
	case FloatKind:
		s := ron.Struct{Name: "Float"}
		if t.HasDefault {
			s.Items = []ron.Value{ron.Float(t.Default)}
		}
		return s
	case IntKind:
		s := ron.Struct{Name: "Int"}
		if t.HasDefault {
			s.Items = []ron.Value{ron.Int(t.Default)}
		}
		return s
	case BoolKind:
		s := ron.Struct{Name: "Bool"}
		if t.HasDefault {
			s.Items = []ron.Value{ron.Bool(t.Default)}
		}
		return s
	case VectorKind:
		s := ron.Struct{Name: fmt.Sprintf("Vector%d", t.Size)}
		for _, f := range t.Default {
			s.Items = append(s.Items, ron.Float(f))
		}
		return s
	case MatrixKind:
		s := ron.Struct{Name: fmt.Sprintf("Matrix%d", t.Size)}
		for _, f := range t.Default {
			s.Items = append(s.Items, ron.Float(f))
		}
		return s
	default:
		return ron.Ident("Unknown")
	}
}

func encodeDrawParameters(dp DrawParameters) ron.Value {
	s := ron.Struct{Name: "DrawParameters"}

	cull := ron.None()
	if dp.CullFace != nil {
		cull = ron.Some(ron.Ident(dp.CullFace.String()))
	}
	s.Fields = append(s.Fields, ron.Field{Name: "cull_face", Value: cull})

	s.Fields = append(s.Fields, ron.Field{Name: "color_write", Value: ron.Struct{
		Name: "ColorMask",
		Fields: []ron.Field{
			{Name: "red", Value: ron.Bool(dp.ColorWrite.Red)},
			{Name: "green", Value: ron.Bool(dp.ColorWrite.Green)},
			{Name: "blue", Value: ron.Bool(dp.ColorWrite.Blue)},
			{Name: "alpha", Value: ron.Bool(dp.ColorWrite.Alpha)},
		},
	}})

	s.Fields = append(s.Fields, ron.Field{Name: "depth_write", Value: ron.Bool(dp.DepthWrite)})

	stencilTest := ron.None()
	if dp.StencilTest != nil {
		stencilTest = ron.Some(ron.Struct{
			Name: "StencilFunc",
			Fields: []ron.Field{
				{Name: "func", Value: ron.Ident(dp.StencilTest.Func.String())},
				{Name: "ref", Value: ron.Int(int64(dp.StencilTest.Ref))},
				{Name: "mask", Value: ron.Int(int64(dp.StencilTest.Mask))},
			},
		})
	}
	s.Fields = append(s.Fields, ron.Field{Name: "stencil_test", Value: stencilTest})

	depthTest := ron.None()
	if dp.DepthTest != nil {
		depthTest = ron.Some(ron.Ident(dp.DepthTest.String()))
	}
	s.Fields = append(s.Fields, ron.Field{Name: "depth_test", Value: depthTest})

	blend := ron.None()
	if dp.Blend != nil {
		blend = ron.Some(ron.Struct{
			Name: "BlendParameters",
			Fields: []ron.Field{
				{Name: "func", Value: ron.Struct{
					Name: "BlendFunc",
					Fields: []ron.Field{
						{Name: "sfactor", Value: ron.Ident(dp.Blend.Func.SFactor.String())},
						{Name: "dfactor", Value: ron.Ident(dp.Blend.Func.DFactor.String())},
						{Name: "alpha_sfactor", Value: ron.Ident(dp.Blend.Func.AlphaSFactor.String())},
						{Name: "alpha_dfactor", Value: ron.Ident(dp.Blend.Func.AlphaDFactor.String())},
					},
				}},
				{Name: "equation", Value: ron.Struct{
					Name: "BlendEquation",
					Fields: []ron.Field{
						{Name: "rgb", Value: ron.Ident(dp.Blend.Equation.RGB.String())},
						{Name: "alpha", Value: ron.Ident(dp.Blend.Equation.Alpha.String())},
					},
				}},
			},
		})
	}
	s.Fields = append(s.Fields, ron.Field{Name: "blend", Value: blend})

	s.Fields = append(s.Fields, ron.Field{Name: "stencil_op", Value: ron.Struct{
		Name: "StencilOp",
		Fields: []ron.Field{
			{Name: "fail", Value: ron.Ident(dp.StencilOp.Fail.String())},
			{Name: "zfail", Value: ron.Ident(dp.StencilOp.ZFail.String())},
			{Name: "zpass", Value: ron.Ident(dp.StencilOp.ZPass.String())},
			{Name: "write_mask", Value: ron.Int(int64(dp.StencilOp.WriteMask))},
		},
	}})

	scissor := ron.None()
	if dp.ScissorBox != nil {
		scissor = ron.Some(ron.Struct{
			Name: "ScissorBox",
			Fields: []ron.Field{
				{Name: "x", Value: ron.Int(int64(dp.ScissorBox.X))},
				{Name: "y", Value: ron.Int(int64(dp.ScissorBox.Y))},
				{Name: "width", Value: ron.Int(int64(dp.ScissorBox.Width))},
				{Name: "height", Value: ron.Int(int64(dp.ScissorBox.Height))},
			},
		})
	}
	s.Fields = append(s.Fields, ron.Field{Name: "scissor_box", Value: scissor})

	return s
}
