// Package soundmap provides the surface sound lookup tables: which physical
// material a texture belongs to, and which sound files play for a given
// material and contact event. The tables are static data loaded once per
// session; resolution at contact time is a pure lookup plus one random draw.
package soundmap

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/coldforge/outpost/pkg/ron"
)

// Table errors.
var (
	ErrBadTable        = errors.New("soundmap: malformed sound table")
	ErrUnknownMaterial = errors.New("soundmap: unknown material tag")
	ErrUnknownKind     = errors.New("soundmap: unknown sound kind")
)

// MaterialType is a coarse surface classification used to pick contact
// sounds. It is distinct from a rendering material.
type MaterialType int

const (
	MaterialGrass MaterialType = iota
	MaterialMetal
	MaterialStone
	MaterialWood
	MaterialChain
	MaterialFlesh
	materialCount
)

var materialNames = [...]string{"Grass", "Metal", "Stone", "Wood", "Chain", "Flesh"}

func (m MaterialType) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return fmt.Sprintf("MaterialType(%d)", int(m))
	}
	return materialNames[m]
}

// ParseMaterialType resolves a material tag name.
func ParseMaterialType(s string) (MaterialType, error) {
	for i, name := range materialNames {
		if name == s {
			return MaterialType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMaterial, s)
}

// SoundKind is the contact event category a sound belongs to.
type SoundKind int

const (
	SoundImpact SoundKind = iota
	SoundFootStep
	soundKindCount
)

var soundKindNames = [...]string{"Impact", "FootStep"}

func (k SoundKind) String() string {
	if k < 0 || int(k) >= len(soundKindNames) {
		return fmt.Sprintf("SoundKind(%d)", int(k))
	}
	return soundKindNames[k]
}

// ParseSoundKind resolves a sound kind name.
func ParseSoundKind(s string) (SoundKind, error) {
	for i, name := range soundKindNames {
		if name == s {
			return SoundKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Base holds both lookup tables of the sound map file. It is immutable
// after load and safe for concurrent readers.
//
// An empty sound list is legal and means silence for that event on that
// material; a texture missing from TextureToMaterial means no environment
// sounds play on that surface at all.
type Base struct {
	MaterialToSound   map[MaterialType]map[SoundKind][]string
	TextureToMaterial map[string]MaterialType

	// Conflicts lists texture keys that appeared more than once after path
	// normalization. The first occurrence wins.
	Conflicts []string
}

// NormalizePath unifies slashes and strips ./ prefixes so authored paths
// and runtime queries compare equal regardless of platform conventions.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// ParseBase parses a sound map document.
func ParseBase(data []byte) (*Base, error) {
	root, err := ron.Parse(data)
	if err != nil {
		return nil, err
	}
	s, ok := root.(ron.Struct)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a struct", ErrBadTable)
	}

	base := &Base{
		MaterialToSound:   make(map[MaterialType]map[SoundKind][]string),
		TextureToMaterial: make(map[string]MaterialType),
	}

	if v, ok := s.Field("material_to_sound"); ok {
		m, ok := v.(ron.Map)
		if !ok {
			return nil, fmt.Errorf("%w: material_to_sound must be a map", ErrBadTable)
		}
		for _, entry := range m {
			material, err := materialKey(entry.Key)
			if err != nil {
				return nil, err
			}
			kinds, ok := entry.Value.(ron.Map)
			if !ok {
				return nil, fmt.Errorf("%w: %s entry must be a map", ErrBadTable, material)
			}
			byKind := make(map[SoundKind][]string, len(kinds))
			for _, ke := range kinds {
				kind, err := kindKey(ke.Key)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", material, err)
				}
				list, ok := ke.Value.(ron.List)
				if !ok {
					return nil, fmt.Errorf("%w: %s/%s must be a list", ErrBadTable, material, kind)
				}
				sounds := make([]string, 0, len(list))
				for _, sv := range list {
					str, ok := sv.(ron.String)
					if !ok {
						return nil, fmt.Errorf("%w: %s/%s entries must be path strings", ErrBadTable, material, kind)
					}
					sounds = append(sounds, string(str))
				}
				byKind[kind] = sounds
			}
			base.MaterialToSound[material] = byKind
		}
	}

	if v, ok := s.Field("texture_to_material"); ok {
		m, ok := v.(ron.Map)
		if !ok {
			return nil, fmt.Errorf("%w: texture_to_material must be a map", ErrBadTable)
		}
		for _, entry := range m {
			str, ok := entry.Key.(ron.String)
			if !ok {
				return nil, fmt.Errorf("%w: texture keys must be path strings", ErrBadTable)
			}
			material, err := materialKey(entry.Value)
			if err != nil {
				return nil, fmt.Errorf("texture %q: %w", str, err)
			}
			key := NormalizePath(string(str))
			if key == "" {
				base.Conflicts = append(base.Conflicts, string(str))
				continue
			}
			if _, dup := base.TextureToMaterial[key]; dup {
				base.Conflicts = append(base.Conflicts, key)
				continue
			}
			base.TextureToMaterial[key] = material
		}
	}

	return base, nil
}

// LoadBase parses a sound map file from disk.
func LoadBase(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sound map: %w", err)
	}
	base, err := ParseBase(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

// Encode serializes the tables back to RON. Materials and kinds come out in
// enum order and textures sorted by path, so output is deterministic.
func (b *Base) Encode() []byte {
	root := ron.Struct{}

	mts := ron.Map{}
	for m := MaterialType(0); m < materialCount; m++ {
		kinds, ok := b.MaterialToSound[m]
		if !ok {
			continue
		}
		inner := ron.Map{}
		for k := SoundKind(0); k < soundKindCount; k++ {
			sounds, ok := kinds[k]
			if !ok {
				continue
			}
			list := ron.List{}
			for _, s := range sounds {
				list = append(list, ron.String(s))
			}
			inner = append(inner, ron.MapEntry{Key: ron.Ident(k.String()), Value: list})
		}
		mts = append(mts, ron.MapEntry{Key: ron.Ident(m.String()), Value: inner})
	}
	root.Fields = append(root.Fields, ron.Field{Name: "material_to_sound", Value: mts})

	textures := make([]string, 0, len(b.TextureToMaterial))
	for t := range b.TextureToMaterial {
		textures = append(textures, t)
	}
	sort.Strings(textures)
	ttm := ron.Map{}
	for _, t := range textures {
		ttm = append(ttm, ron.MapEntry{
			Key:   ron.String(t),
			Value: ron.Ident(b.TextureToMaterial[t].String()),
		})
	}
	root.Fields = append(root.Fields, ron.Field{Name: "texture_to_material", Value: ttm})

	return ron.Marshal(root)
}

// Validate reports consistency problems between the two tables: materials
// referenced by textures without any sound entry. Empty sound lists are not
// reported; they are deliberate silence.
func (b *Base) Validate() []error {
	var problems []error
	seen := make(map[MaterialType]bool)
	for texture, material := range b.TextureToMaterial {
		if _, ok := b.MaterialToSound[material]; !ok && !seen[material] {
			seen[material] = true
			problems = append(problems, fmt.Errorf(
				"material %s is used by %q but has no sound entry", material, texture))
		}
	}
	return problems
}

func materialKey(v ron.Value) (MaterialType, error) {
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: material tags must be bare identifiers", ErrBadTable)
	}
	return ParseMaterialType(string(id))
}

func kindKey(v ron.Value) (SoundKind, error) {
	id, ok := v.(ron.Ident)
	if !ok {
		return 0, fmt.Errorf("%w: sound kinds must be bare identifiers", ErrBadTable)
	}
	return ParseSoundKind(string(id))
}
