package soundmap

// TriangleRange assigns a material to a half-open triangle index range
// [Start, End) of a collider's geometry.
type TriangleRange struct {
	Start    uint32
	End      uint32
	Material MaterialType
}

// SurfaceMap maps contact features of one collider back to materials. It is
// built once per collider when a level loads and read-only afterwards.
type SurfaceMap struct {
	ranges []TriangleRange
}

// Ranges returns the underlying ranges in surface order.
func (m *SurfaceMap) Ranges() []TriangleRange {
	return m.ranges
}

// MaterialForFace returns the material owning the given triangle index.
func (m *SurfaceMap) MaterialForFace(idx uint32) (MaterialType, bool) {
	for _, r := range m.ranges {
		if idx >= r.Start && idx < r.End {
			return r.Material, true
		}
	}
	return 0, false
}

// FirstMaterial returns the material of the first mapped range. Convex
// collider shapes report no useful feature index, so contacts against them
// fall back to the first available material.
func (m *SurfaceMap) FirstMaterial() (MaterialType, bool) {
	if len(m.ranges) == 0 {
		return 0, false
	}
	return m.ranges[0].Material, true
}

// SurfaceMapBuilder accumulates the surfaces of one collider in mesh order.
// Surfaces whose texture has no material mapping leave a hole in the range
// list: contacts there resolve to nothing and stay silent.
type SurfaceMapBuilder struct {
	resolver *Resolver
	offset   uint32
	ranges   []TriangleRange
	unmapped []string
}

// NewSurfaceMapBuilder starts a builder resolving against the given tables.
func NewSurfaceMapBuilder(r *Resolver) *SurfaceMapBuilder {
	return &SurfaceMapBuilder{resolver: r}
}

// AddSurface appends one surface with its diffuse texture path and triangle
// count.
func (b *SurfaceMapBuilder) AddSurface(texturePath string, triangles uint32) {
	start := b.offset
	b.offset += triangles
	material, ok := b.resolver.ResolveMaterial(texturePath)
	if !ok {
		b.unmapped = append(b.unmapped, NormalizePath(texturePath))
		return
	}
	b.ranges = append(b.ranges, TriangleRange{Start: start, End: b.offset, Material: material})
}

// Build returns the finished map and the textures that had no material
// mapping, in the order they were added.
func (b *SurfaceMapBuilder) Build() (*SurfaceMap, []string) {
	return &SurfaceMap{ranges: b.ranges}, b.unmapped
}
