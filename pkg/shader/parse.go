package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/coldforge/outpost/pkg/ron"
)

// Schema errors.
var (
	ErrMissingName = errors.New("shader: descriptor has no name")
	ErrNoPasses    = errors.New("shader: descriptor has no passes")
	ErrUnknownEnum = errors.New("shader: unknown enum tag")
	ErrBadSchema   = errors.New("shader: malformed descriptor")
)

// Variant identifies which schema a file was written in.
type Variant int

const (
	// VariantCanonical declares bind points under a `resources` key with
	// explicit binding slots.
	VariantCanonical Variant = iota
	// VariantLegacy is the older schema: a flat `properties` list without
	// binding slots; slots are assigned in declaration order when read.
	VariantLegacy
)

func (v Variant) String() string {
	if v == VariantLegacy {
		return "legacy"
	}
	return "canonical"
}

// Parse parses a shader descriptor in either schema variant. GLSL source is
// carried through untouched; compiling it is not this layer's concern.
func Parse(data []byte) (*Descriptor, error) {
	d, _, err := ParseVariant(data)
	return d, err
}

// ParseVariant parses a descriptor and reports which schema variant the
// file used.
func ParseVariant(data []byte) (*Descriptor, Variant, error) {
	root, err := ron.Parse(data)
	if err != nil {
		return nil, VariantCanonical, err
	}
	s, ok := root.(ron.Struct)
	if !ok || len(s.Fields) == 0 {
		return nil, VariantCanonical, fmt.Errorf("%w: top level must be a struct", ErrBadSchema)
	}

	d := &Descriptor{}
	if d.Name, err = stringField(s, "name"); err != nil {
		return nil, VariantCanonical, ErrMissingName
	}

	variant := VariantCanonical
	if v, ok := s.Field("resources"); ok {
		if d.Resources, err = decodeResources(v, true); err != nil {
			return nil, variant, err
		}
	} else if v, ok := s.Field("properties"); ok {
		variant = VariantLegacy
		if d.Resources, err = decodeResources(v, false); err != nil {
			return nil, variant, err
		}
	}

	passesVal, ok := s.Field("passes")
	if !ok {
		return nil, variant, ErrNoPasses
	}
	passes, ok := passesVal.(ron.List)
	if !ok {
		return nil, variant, fmt.Errorf("%w: passes must be a list", ErrBadSchema)
	}
	if len(passes) == 0 {
		return nil, variant, ErrNoPasses
	}
	for i, pv := range passes {
		pass, err := decodePass(pv)
		if err != nil {
			return nil, variant, fmt.Errorf("pass %d: %w", i, err)
		}
		d.Passes = append(d.Passes, pass)
	}
	return d, variant, nil
}

// ParseFile parses a shader descriptor from disk.
func ParseFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shader descriptor: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func decodeResources(v ron.Value, withBinding bool) ([]Resource, error) {
	list, ok := v.(ron.List)
	if !ok {
		return nil, fmt.Errorf("%w: resources must be a list", ErrBadSchema)
	}
	resources := make([]Resource, 0, len(list))
	for i, rv := range list {
		s, ok := rv.(ron.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: resource %d must be a struct", ErrBadSchema, i)
		}
		var res Resource
		var err error
		if res.Name, err = stringField(s, "name"); err != nil {
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
		kindVal, ok := s.Field("kind")
		if !ok {
			return nil, fmt.Errorf("%w: resource %q has no kind", ErrBadSchema, res.Name)
		}
		if res.Kind, err = decodeKind(kindVal); err != nil {
			return nil, fmt.Errorf("resource %q: %w", res.Name, err)
		}
		if withBinding {
			b, err := intField(s, "binding")
			if err != nil {
				return nil, fmt.Errorf("resource %q: %w", res.Name, err)
			}
			res.Binding = int(b)
		} else {
			res.Binding = i
		}
		resources = append(resources, res)
	}
	return resources, nil
}

func decodeKind(v ron.Value) (ResourceKind, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		if id, ok := v.(ron.Ident); ok {
			// Bare tag without arguments, e.g. `kind: Matrix4`.
			s = ron.Struct{Name: string(id)}
		} else {
			return nil, fmt.Errorf("%w: kind must be a tagged value", ErrBadSchema)
		}
	}
	switch s.Name {
	case "Sampler":
		k := SamplerKind{}
		if dv, ok := s.Field("default"); ok {
			if inner, present := ron.Option(dv); present {
				str, ok := inner.(ron.String)
				if !ok {
					return nil, fmt.Errorf("%w: sampler default must be a path string", ErrBadSchema)
				}
				k.Default = string(str)
			}
		}
		if fv, ok := s.Field("fallback"); ok {
			id, ok := fv.(ron.Ident)
			if !ok {
				return nil, fmt.Errorf("%w: sampler fallback", ErrBadSchema)
			}
			fb, ok := samplerFallbacks[string(id)]
			if !ok {
				return nil, fmt.Errorf("%w: sampler fallback %q", ErrUnknownEnum, id)
			}
			k.Fallback = fb
		}
		return k, nil
	case "Float":
		k := FloatKind{}
		if len(s.Items) > 0 {
			f, err := floatValue(s.Items[0])
			if err != nil {
				return nil, err
			}
			k.HasDefault = true
			k.Default = f
		}
		return k, nil
	case "Int":
		k := IntKind{}
		if len(s.Items) > 0 {
			n, ok := s.Items[0].(ron.Int)
			if !ok {
				return nil, fmt.Errorf("%w: Int default must be an integer", ErrBadSchema)
			}
			k.HasDefault = true
			k.Default = int64(n)
		}
		return k, nil
	case "Bool":
		k := BoolKind{}
		if len(s.Items) > 0 {
			b, ok := s.Items[0].(ron.Bool)
			if !ok {
				return nil, fmt.Errorf("%w: Bool default must be a boolean", ErrBadSchema)
			}
			k.HasDefault = true
			k.Default = bool(b)
		}
		return k, nil
	case "Vector2", "Vector3", "Vector4":
		size := int(s.Name[len(s.Name)-1] - '0')
		k := VectorKind{Size: size}
		if len(s.Items) > 0 {
			if len(s.Items) != size {
				return nil, fmt.Errorf("%w: %s default needs %d components, got %d",
					ErrBadSchema, s.Name, size, len(s.Items))
			}
			for _, item := range s.Items {
				f, err := floatValue(item)
				if err != nil {
					return nil, err
				}
				k.Default = append(k.Default, f)
			}
		}
		return k, nil
	case "Matrix2", "Matrix3", "Matrix4":
		size := int(s.Name[len(s.Name)-1] - '0')
		k := MatrixKind{Size: size}
		if len(s.Items) > 0 {
			if len(s.Items) != size*size {
				return nil, fmt.Errorf("%w: %s default needs %d components, got %d",
					ErrBadSchema, s.Name, size*size, len(s.Items))
			}
			for _, item := range s.Items {
				f, err := floatValue(item)
				if err != nil {
					return nil, err
				}
				k.Default = append(k.Default, f)
			}
		}
		return k, nil
	default:
		return nil, fmt.Errorf("%w: resource kind %q", ErrUnknownEnum, s.Name)
	}
}

func decodePass(v ron.Value) (RenderPass, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return RenderPass{}, fmt.Errorf("%w: pass must be a struct", ErrBadSchema)
	}
	var pass RenderPass
	var err error
	if pass.Name, err = stringField(s, "name"); err != nil {
		return RenderPass{}, err
	}
	pass.DrawParameters = DefaultDrawParameters()
	if dp, ok := s.Field("draw_parameters"); ok {
		if pass.DrawParameters, err = decodeDrawParameters(dp); err != nil {
			return RenderPass{}, err
		}
	}
	if pass.VertexShader, err = stringField(s, "vertex_shader"); err != nil {
		return RenderPass{}, err
	}
	if pass.FragmentShader, err = stringField(s, "fragment_shader"); err != nil {
		return RenderPass{}, err
	}
	return pass, nil
}

func decodeDrawParameters(v ron.Value) (DrawParameters, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return DrawParameters{}, fmt.Errorf("%w: draw_parameters must be a struct", ErrBadSchema)
	}
	dp := DefaultDrawParameters()

	if cv, ok := s.Field("cull_face"); ok {
		dp.CullFace = nil
		if inner, present := ron.Option(cv); present {
			id, ok := inner.(ron.Ident)
			if !ok {
				return DrawParameters{}, fmt.Errorf("%w: cull_face", ErrBadSchema)
			}
			cf, ok := cullFaces[string(id)]
			if !ok {
				return DrawParameters{}, fmt.Errorf("%w: cull face %q", ErrUnknownEnum, id)
			}
			dp.CullFace = &cf
		}
	}

	if cw, ok := s.Field("color_write"); ok {
		mask, err := decodeColorMask(cw)
		if err != nil {
			return DrawParameters{}, err
		}
		dp.ColorWrite = mask
	}

	if dw, ok := s.Field("depth_write"); ok {
		b, ok := dw.(ron.Bool)
		if !ok {
			return DrawParameters{}, fmt.Errorf("%w: depth_write must be a boolean", ErrBadSchema)
		}
		dp.DepthWrite = bool(b)
	}

	if dt, ok := s.Field("depth_test"); ok {
		dp.DepthTest = nil
		if inner, present := ron.Option(dt); present {
			cf, err := compareFuncValue(inner)
			if err != nil {
				return DrawParameters{}, fmt.Errorf("depth_test: %w", err)
			}
			dp.DepthTest = &cf
		}
	}

	if st, ok := s.Field("stencil_test"); ok {
		dp.StencilTest = nil
		if inner, present := ron.Option(st); present {
			sf, err := decodeStencilFunc(inner)
			if err != nil {
				return DrawParameters{}, err
			}
			dp.StencilTest = &sf
		}
	}

	if bv, ok := s.Field("blend"); ok {
		dp.Blend = nil
		if inner, present := ron.Option(bv); present {
			bp, err := decodeBlend(inner)
			if err != nil {
				return DrawParameters{}, err
			}
			dp.Blend = &bp
		}
	}

	if sv, ok := s.Field("stencil_op"); ok {
		op, err := decodeStencilOp(sv)
		if err != nil {
			return DrawParameters{}, err
		}
		dp.StencilOp = op
	}

	if sb, ok := s.Field("scissor_box"); ok {
		dp.ScissorBox = nil
		if inner, present := ron.Option(sb); present {
			box, err := decodeScissorBox(inner)
			if err != nil {
				return DrawParameters{}, err
			}
			dp.ScissorBox = &box
		}
	}

	return dp, nil
}

func decodeColorMask(v ron.Value) (ColorMask, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return ColorMask{}, fmt.Errorf("%w: color_write must be a struct", ErrBadSchema)
	}
	mask := ColorMask{Red: true, Green: true, Blue: true, Alpha: true}
	for _, f := range s.Fields {
		b, ok := f.Value.(ron.Bool)
		if !ok {
			return ColorMask{}, fmt.Errorf("%w: color_write.%s must be a boolean", ErrBadSchema, f.Name)
		}
		switch f.Name {
		case "red":
			mask.Red = bool(b)
		case "green":
			mask.Green = bool(b)
		case "blue":
			mask.Blue = bool(b)
		case "alpha":
			mask.Alpha = bool(b)
		default:
			return ColorMask{}, fmt.Errorf("%w: color_write field %q", ErrBadSchema, f.Name)
		}
	}
	return mask, nil
}

func decodeBlend(v ron.Value) (BlendParameters, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return BlendParameters{}, fmt.Errorf("%w: blend must be a struct", ErrBadSchema)
	}
	bp := BlendParameters{
		Func:     NewBlendFunc(BlendOne, BlendZero),
		Equation: BlendEquation{RGB: BlendAdd, Alpha: BlendAdd},
	}
	if fv, ok := s.Field("func"); ok {
		fs, ok := fv.(ron.Struct)
		if !ok {
			return BlendParameters{}, fmt.Errorf("%w: blend func must be a struct", ErrBadSchema)
		}
		var err error
		if bp.Func.SFactor, err = blendFactorField(fs, "sfactor", bp.Func.SFactor); err != nil {
			return BlendParameters{}, err
		}
		if bp.Func.DFactor, err = blendFactorField(fs, "dfactor", bp.Func.DFactor); err != nil {
			return BlendParameters{}, err
		}
		// Alpha factors mirror the RGB ones unless declared separately.
		bp.Func.AlphaSFactor, bp.Func.AlphaDFactor = bp.Func.SFactor, bp.Func.DFactor
		if bp.Func.AlphaSFactor, err = blendFactorField(fs, "alpha_sfactor", bp.Func.AlphaSFactor); err != nil {
			return BlendParameters{}, err
		}
		if bp.Func.AlphaDFactor, err = blendFactorField(fs, "alpha_dfactor", bp.Func.AlphaDFactor); err != nil {
			return BlendParameters{}, err
		}
	}
	if ev, ok := s.Field("equation"); ok {
		es, ok := ev.(ron.Struct)
		if !ok {
			return BlendParameters{}, fmt.Errorf("%w: blend equation must be a struct", ErrBadSchema)
		}
		var err error
		if bp.Equation.RGB, err = blendModeField(es, "rgb", bp.Equation.RGB); err != nil {
			return BlendParameters{}, err
		}
		if bp.Equation.Alpha, err = blendModeField(es, "alpha", bp.Equation.Alpha); err != nil {
			return BlendParameters{}, err
		}
	}
	return bp, nil
}

func decodeStencilFunc(v ron.Value) (StencilFunc, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return StencilFunc{}, fmt.Errorf("%w: stencil_test must be a struct", ErrBadSchema)
	}
	sf := StencilFunc{Func: CompareAlways, Mask: 0xFFFF_FFFF}
	if fv, ok := s.Field("func"); ok {
		cf, err := compareFuncValue(fv)
		if err != nil {
			return StencilFunc{}, fmt.Errorf("stencil_test: %w", err)
		}
		sf.Func = cf
	}
	if rv, ok := s.Field("ref"); ok {
		n, ok := rv.(ron.Int)
		if !ok {
			return StencilFunc{}, fmt.Errorf("%w: stencil ref must be an integer", ErrBadSchema)
		}
		sf.Ref = uint32(n)
	}
	if mv, ok := s.Field("mask"); ok {
		n, ok := mv.(ron.Int)
		if !ok {
			return StencilFunc{}, fmt.Errorf("%w: stencil mask must be an integer", ErrBadSchema)
		}
		sf.Mask = uint32(n)
	}
	return sf, nil
}

func decodeStencilOp(v ron.Value) (StencilOp, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return StencilOp{}, fmt.Errorf("%w: stencil_op must be a struct", ErrBadSchema)
	}
	op := DefaultStencilOp()
	var err error
	if op.Fail, err = stencilActionField(s, "fail", op.Fail); err != nil {
		return StencilOp{}, err
	}
	if op.ZFail, err = stencilActionField(s, "zfail", op.ZFail); err != nil {
		return StencilOp{}, err
	}
	if op.ZPass, err = stencilActionField(s, "zpass", op.ZPass); err != nil {
		return StencilOp{}, err
	}
	if mv, ok := s.Field("write_mask"); ok {
		n, ok := mv.(ron.Int)
		if !ok {
			return StencilOp{}, fmt.Errorf("%w: stencil write_mask must be an integer", ErrBadSchema)
		}
		op.WriteMask = uint32(n)
	}
	return op, nil
}

func decodeScissorBox(v ron.Value) (ScissorBox, error) {
	s, ok := v.(ron.Struct)
	if !ok {
		return ScissorBox{}, fmt.Errorf("%w: scissor_box must be a struct", ErrBadSchema)
	}
	var box ScissorBox
	fields := []struct {
		name string
		dst  *int32
	}{
		{"x", &box.X},
		{"y", &box.Y},
		{"width", &box.Width},
		{"height", &box.Height},
	}
	for _, f := range fields {
		n, err := intField(s, f.name)
		if err != nil {
			return ScissorBox{}, fmt.Errorf("scissor_box: %w", err)
		}
		*f.dst = int32(n)
	}
	return box, nil
}

func compareFuncValue(v ron.Value) (CompareFunc, error) {
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: comparison must be a bare tag", ErrBadSchema)
	}
	cf, ok := compareFuncs[string(id)]
	if !ok {
		return 0, fmt.Errorf("%w: comparison %q", ErrUnknownEnum, id)
	}
	return cf, nil
}

func blendFactorField(s ron.Struct, name string, fallback BlendFactor) (BlendFactor, error) {
	v, ok := s.Field(name)
	if !ok {
		return fallback, nil
	}
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a bare tag", ErrBadSchema, name)
	}
	bf, ok := blendFactors[string(id)]
	if !ok {
		return 0, fmt.Errorf("%w: blend factor %q", ErrUnknownEnum, id)
	}
	return bf, nil
}

func blendModeField(s ron.Struct, name string, fallback BlendMode) (BlendMode, error) {
	v, ok := s.Field(name)
	if !ok {
		return fallback, nil
	}
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a bare tag", ErrBadSchema, name)
	}
	bm, ok := blendModes[string(id)]
	if !ok {
		return 0, fmt.Errorf("%w: blend mode %q", ErrUnknownEnum, id)
	}
	return bm, nil
}

func stencilActionField(s ron.Struct, name string, fallback StencilAction) (StencilAction, error) {
	v, ok := s.Field(name)
	if !ok {
		return fallback, nil
	}
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a bare tag", ErrBadSchema, name)
	}
	sa, ok := stencilActions[string(id)]
	if !ok {
		return 0, fmt.Errorf("%w: stencil action %q", ErrUnknownEnum, id)
	}
	return sa, nil
}

func stringField(s ron.Struct, name string) (string, error) {
	v, ok := s.Field(name)
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrBadSchema, name)
	}
	str, ok := v.(ron.String)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", ErrBadSchema, name)
	}
	return string(str), nil
}

func intField(s ron.Struct, name string) (int64, error) {
	v, ok := s.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrBadSchema, name)
	}
	n, ok := v.(ron.Int)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be an integer", ErrBadSchema, name)
	}
	return int64(n), nil
}

func floatValue(v ron.Value) (float64, error) {
	switch t := v.(type) {
	case ron.Float:
		return float64(t), nil
	case ron.Int:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("%w: expected a number", ErrBadSchema)
	}
}
