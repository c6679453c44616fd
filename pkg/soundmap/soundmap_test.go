package soundmap

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func loadTestBase(t *testing.T) *Base {
	t.Helper()
	base, err := LoadBase(filepath.Join("testdata", "sound_map.ron"))
	if err != nil {
		t.Fatalf("LoadBase failed: %v", err)
	}
	return base
}

func TestParseBase(t *testing.T) {
	base := loadTestBase(t)

	if len(base.MaterialToSound) != 6 {
		t.Errorf("expected 6 materials, got %d", len(base.MaterialToSound))
	}
	if len(base.TextureToMaterial) != 10 {
		t.Errorf("expected 10 textures, got %d", len(base.TextureToMaterial))
	}
	if len(base.Conflicts) != 0 {
		t.Errorf("unexpected conflicts: %v", base.Conflicts)
	}

	metal := base.MaterialToSound[MaterialMetal]
	if len(metal[SoundFootStep]) != 3 {
		t.Errorf("expected 3 metal footstep sounds, got %d", len(metal[SoundFootStep]))
	}

	// Flesh declares footsteps as explicit silence.
	flesh := base.MaterialToSound[MaterialFlesh]
	sounds, ok := flesh[SoundFootStep]
	if !ok {
		t.Fatal("Flesh/FootStep entry should be present")
	}
	if len(sounds) != 0 {
		t.Errorf("Flesh/FootStep should be empty, got %v", sounds)
	}
}

func TestRoundTrip(t *testing.T) {
	first := loadTestBase(t)
	second, err := ParseBase(first.Encode())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed tables:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestResolveMaterial(t *testing.T) {
	r := NewResolver(loadTestBase(t))

	m, ok := r.ResolveMaterial("data/models/zombie/Ch10_1001_Diffuse.png")
	if !ok || m != MaterialFlesh {
		t.Errorf("zombie diffuse = %v, %v; want Flesh, true", m, ok)
	}

	// Path spelling differences normalize away.
	variants := []string{
		"./data/textures/platform.png",
		`data\textures\platform.png`,
		"data/textures/../textures/platform.png",
	}
	for _, v := range variants {
		if m, ok := r.ResolveMaterial(v); !ok || m != MaterialMetal {
			t.Errorf("ResolveMaterial(%q) = %v, %v; want Metal, true", v, m, ok)
		}
	}

	// No fallback for unmapped textures.
	if _, ok := r.ResolveMaterial("data/textures/never_mapped.png"); ok {
		t.Error("unmapped texture should resolve to nothing")
	}
	if _, ok := r.ResolveMaterial(""); ok {
		t.Error("empty path should resolve to nothing")
	}
}

func TestPickSoundFleshScenario(t *testing.T) {
	r := NewResolver(loadTestBase(t))

	rng := rand.New(rand.NewSource(0))
	sound, ok := r.PickSound(MaterialFlesh, SoundImpact, rng)
	if !ok {
		t.Fatal("Flesh/Impact should yield a sound")
	}
	if sound != "data/sounds/bullet_impact_body.ogg" {
		t.Errorf("Flesh/Impact = %q", sound)
	}

	if _, ok := r.PickSound(MaterialFlesh, SoundFootStep, rng); ok {
		t.Error("Flesh/FootStep is declared silent but yielded a sound")
	}
}

func TestPickSoundDrawsFromDeclaredList(t *testing.T) {
	r := NewResolver(loadTestBase(t))
	rng := rand.New(rand.NewSource(42))

	for m := MaterialType(0); m < materialCount; m++ {
		for k := SoundKind(0); k < soundKindCount; k++ {
			declared := make(map[string]bool)
			for _, s := range r.Sounds(m, k) {
				declared[s] = true
			}
			for i := 0; i < 50; i++ {
				sound, ok := r.PickSound(m, k, rng)
				if !ok {
					if len(declared) != 0 {
						t.Errorf("%s/%s: no sound despite %d declared", m, k, len(declared))
					}
					break
				}
				if !declared[sound] {
					t.Errorf("%s/%s: picked %q which is not declared", m, k, sound)
				}
			}
		}
	}
}

func TestPickSoundDeterministic(t *testing.T) {
	r := NewResolver(loadTestBase(t))

	var first []string
	for run := 0; run < 3; run++ {
		rng := rand.New(rand.NewSource(7))
		var picks []string
		for i := 0; i < 20; i++ {
			s, _ := r.PickSound(MaterialStone, SoundFootStep, rng)
			picks = append(picks, s)
		}
		if run == 0 {
			first = picks
			continue
		}
		if !reflect.DeepEqual(first, picks) {
			t.Fatalf("run %d diverged from first run:\n%v\n%v", run, first, picks)
		}
	}
}

func TestParseBaseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unknown material",
			src:  `(material_to_sound: {Plastic: {Impact: []}})`,
			want: ErrUnknownMaterial,
		},
		{
			name: "unknown kind",
			src:  `(material_to_sound: {Metal: {Splash: []}})`,
			want: ErrUnknownKind,
		},
		{
			name: "non-string texture key",
			src:  `(texture_to_material: {42: Metal})`,
			want: ErrBadTable,
		},
		{
			name: "non-list sounds",
			src:  `(material_to_sound: {Metal: {Impact: "single.ogg"}})`,
			want: ErrBadTable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBase([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDuplicateTextureKeys(t *testing.T) {
	src := `(
    texture_to_material: {
        "data/textures/a.png": Metal,
        "./data/textures/a.png": Stone,
    },
)`
	base, err := ParseBase([]byte(src))
	if err != nil {
		t.Fatalf("ParseBase failed: %v", err)
	}
	if len(base.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %v", base.Conflicts)
	}
	// First occurrence wins.
	if m := base.TextureToMaterial["data/textures/a.png"]; m != MaterialMetal {
		t.Errorf("expected Metal to win, got %v", m)
	}
}

func TestValidate(t *testing.T) {
	if problems := loadTestBase(t).Validate(); len(problems) != 0 {
		t.Errorf("testdata should validate cleanly, got %v", problems)
	}

	src := `(
    material_to_sound: {Metal: {Impact: []}},
    texture_to_material: {
        "a.png": Wood,
        "b.png": Wood,
        "c.png": Metal,
    },
)`
	base, err := ParseBase([]byte(src))
	if err != nil {
		t.Fatalf("ParseBase failed: %v", err)
	}
	problems := base.Validate()
	// Wood is missing a sound entry; reported once, not per texture.
	if len(problems) != 1 {
		t.Errorf("expected 1 problem, got %v", problems)
	}
}

func TestSuggest(t *testing.T) {
	r := NewResolver(loadTestBase(t))

	got := r.Suggest("data/textures/platfrom.png", 3)
	if len(got) == 0 || got[0] != "data/textures/platform.png" {
		t.Errorf("Suggest(platfrom) = %v, want platform.png first", got)
	}

	if got := r.Suggest("zzzz", 3); len(got) != 0 {
		t.Errorf("Suggest(zzzz) = %v, want none", got)
	}
	if got := r.Suggest("data/textures/platform.png", 0); got != nil {
		t.Errorf("Suggest with n=0 = %v, want nil", got)
	}
}

func TestSharedSwap(t *testing.T) {
	first := NewResolver(loadTestBase(t))
	shared := NewShared(first)

	if shared.Resolver() != first {
		t.Fatal("shared handle should return the stored resolver")
	}

	replacement, err := ParseBase([]byte(`(
    material_to_sound: {Metal: {Impact: ["data/sounds/clank.ogg"]}},
    texture_to_material: {"data/textures/new.png": Metal},
)`))
	if err != nil {
		t.Fatalf("ParseBase failed: %v", err)
	}
	second := NewResolver(replacement)

	old := shared.Swap(second)
	if old != first {
		t.Error("Swap should return the previous resolver")
	}
	if shared.Resolver() != second {
		t.Error("shared handle should now return the replacement")
	}

	if _, ok := shared.Resolver().ResolveMaterial("data/textures/platform.png"); ok {
		t.Error("old table entries should be gone after swap")
	}
	if m, ok := shared.Resolver().ResolveMaterial("data/textures/new.png"); !ok || m != MaterialMetal {
		t.Error("new table entries should be visible after swap")
	}
}

func TestSurfaceMap(t *testing.T) {
	r := NewResolver(loadTestBase(t))

	b := NewSurfaceMapBuilder(r)
	b.AddSurface("data/textures/platform.png", 100)     // Metal, [0, 100)
	b.AddSurface("data/textures/never_mapped.png", 50)  // hole, [100, 150)
	b.AddSurface("data/textures/concrete_wall.png", 30) // Stone, [150, 180)
	sm, unmapped := b.Build()

	if !reflect.DeepEqual(unmapped, []string{"data/textures/never_mapped.png"}) {
		t.Errorf("unmapped = %v", unmapped)
	}

	tests := []struct {
		face uint32
		want MaterialType
		ok   bool
	}{
		{0, MaterialMetal, true},
		{99, MaterialMetal, true},
		{100, 0, false}, // hole left by the unmapped texture
		{149, 0, false},
		{150, MaterialStone, true},
		{179, MaterialStone, true},
		{180, 0, false}, // past the end
	}
	for _, tt := range tests {
		m, ok := sm.MaterialForFace(tt.face)
		if ok != tt.ok || (ok && m != tt.want) {
			t.Errorf("MaterialForFace(%d) = %v, %v; want %v, %v", tt.face, m, ok, tt.want, tt.ok)
		}
	}

	// Convex collider fallback.
	if m, ok := sm.FirstMaterial(); !ok || m != MaterialMetal {
		t.Errorf("FirstMaterial = %v, %v; want Metal, true", m, ok)
	}

	empty, _ := NewSurfaceMapBuilder(r).Build()
	if _, ok := empty.FirstMaterial(); ok {
		t.Error("empty surface map should have no first material")
	}
}

func TestMaterialTypeParsing(t *testing.T) {
	for m := MaterialType(0); m < materialCount; m++ {
		parsed, err := ParseMaterialType(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseMaterialType(%s) = %v, %v", m, parsed, err)
		}
	}
	if _, err := ParseMaterialType("Glass"); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("expected ErrUnknownMaterial, got %v", err)
	}

	for k := SoundKind(0); k < soundKindCount; k++ {
		parsed, err := ParseSoundKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseSoundKind(%s) = %v, %v", k, parsed, err)
		}
	}
	if _, err := ParseSoundKind("Splash"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestLoadBaseMissingFile(t *testing.T) {
	if _, err := LoadBase(filepath.Join(t.TempDir(), "missing.ron")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadBase(writeTemp(t, "not ron at all ( [")); err == nil {
		t.Error("expected error for malformed file")
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sound_map.ron")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
