package editorcfg

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/coldforge/outpost/pkg/ron"
)

func loadTestDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", "settings.ron"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func TestRoundTripLossless(t *testing.T) {
	first := loadTestDocument(t)
	second, err := Parse(first.Encode())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !ron.Equal(first.Root(), second.Root()) {
		t.Error("round trip changed the document tree")
	}
}

func TestRecentScenes(t *testing.T) {
	doc := loadTestDocument(t)

	want := []string{
		"data/levels/arrival.rgs",
		"data/levels/lab.rgs",
		"data/levels/testbed.rgs",
	}
	if got := doc.RecentScenes(); !reflect.DeepEqual(got, want) {
		t.Errorf("RecentScenes = %v, want %v", got, want)
	}

	// Touching an existing scene moves it to the front without duplicating.
	doc.TouchRecentScene("data/levels/lab.rgs")
	want = []string{
		"data/levels/lab.rgs",
		"data/levels/arrival.rgs",
		"data/levels/testbed.rgs",
	}
	if got := doc.RecentScenes(); !reflect.DeepEqual(got, want) {
		t.Errorf("after touch: %v, want %v", got, want)
	}

	// Touching a new scene inserts it at the front.
	doc.TouchRecentScene("data/levels/warehouse.rgs")
	if got := doc.RecentScenes(); len(got) != 4 || got[0] != "data/levels/warehouse.rgs" {
		t.Errorf("after new touch: %v", got)
	}
}

func TestCameraState(t *testing.T) {
	doc := loadTestDocument(t)

	state, ok := doc.CameraFor("data/levels/arrival.rgs")
	if !ok {
		t.Fatal("arrival camera not found")
	}
	if state.Position != [3]float64{12.5, 3.75, -40.25} {
		t.Errorf("position = %v", state.Position)
	}
	if state.Yaw != 1.57 || state.Pitch != 0.35 {
		t.Errorf("yaw/pitch = %v/%v", state.Yaw, state.Pitch)
	}

	if _, ok := doc.CameraFor("data/levels/unknown.rgs"); ok {
		t.Error("unknown scene should have no camera")
	}

	// Updating a camera keeps the rest of the per-scene state.
	doc.SetCameraFor("data/levels/arrival.rgs", CameraState{
		Position: [3]float64{1, 2, 3},
		Yaw:      0.5,
		Pitch:    -0.25,
	})
	state, ok = doc.CameraFor("data/levels/arrival.rgs")
	if !ok || state.Position != [3]float64{1, 2, 3} {
		t.Errorf("updated camera = %+v, %v", state, ok)
	}
	nodes := doc.ExpandedNodes("data/levels/arrival.rgs")
	if len(nodes) != 4 || nodes[1] != "Environment" {
		t.Errorf("expanded nodes lost on camera update: %v", nodes)
	}

	// Setting a camera for a brand new scene creates its entry.
	doc.SetCameraFor("data/levels/warehouse.rgs", CameraState{Yaw: 3.14})
	if state, ok := doc.CameraFor("data/levels/warehouse.rgs"); !ok || state.Yaw != 3.14 {
		t.Errorf("new scene camera = %+v, %v", state, ok)
	}
}

func TestBuildProfiles(t *testing.T) {
	doc := loadTestDocument(t)

	profiles := doc.BuildProfiles()
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	names := []string{"Debug", "Debug (hot reloading)", "Release"}
	for i, name := range names {
		if profiles[i].Name != name {
			t.Errorf("profile %d = %q, want %q", i, profiles[i].Name, name)
		}
	}

	hot := profiles[1]
	if len(hot.BuildCommands) != 2 {
		t.Fatalf("hot reload profile should have 2 build commands, got %d", len(hot.BuildCommands))
	}
	first := hot.BuildCommands[0]
	if first.Command != "cargo" {
		t.Errorf("command = %q", first.Command)
	}
	if first.Env["RUSTFLAGS"] != "-C prefer-dynamic=yes" {
		t.Errorf("env = %v", first.Env)
	}
	if hot.RunCommand.Command != "cargo" || len(hot.RunCommand.Args) == 0 {
		t.Errorf("run command = %+v", hot.RunCommand)
	}

	if profiles[0].BuildCommands[0].Env != nil {
		t.Errorf("Debug profile should have no env overrides, got %v", profiles[0].BuildCommands[0].Env)
	}
}

func TestMutationsPreserveUnknownFields(t *testing.T) {
	doc := loadTestDocument(t)
	doc.SetCameraFor("data/levels/arrival.rgs", CameraState{Yaw: 1})
	doc.TouchRecentScene("data/levels/lab.rgs")

	encoded := string(doc.Encode())
	// Sections this package has no accessors for must survive mutation.
	for _, key := range []string{"key_bindings", "navmesh", "debugging", "ssao_radius", "window_position"} {
		if !strings.Contains(encoded, key) {
			t.Errorf("mutation dropped unrelated section %q", key)
		}
	}
}

func TestUpdateWritesBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.ron")
	src, err := os.ReadFile(filepath.Join("testdata", "settings.ron"))
	if err != nil {
		t.Fatalf("reading testdata: %v", err)
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		t.Fatalf("seeding temp file: %v", err)
	}

	err = Update(path, func(doc *Document) error {
		doc.TouchRecentScene("data/levels/warehouse.rgs")
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.RecentScenes(); len(got) == 0 || got[0] != "data/levels/warehouse.rgs" {
		t.Errorf("update not persisted: %v", got)
	}

	// A failing mutation must leave the file untouched.
	before, _ := os.ReadFile(path)
	err = Update(path, func(doc *Document) error {
		doc.TouchRecentScene("data/levels/ignored.rgs")
		return os.ErrPermission
	})
	if err == nil {
		t.Fatal("expected error from failing mutation")
	}
	after, _ := os.ReadFile(path)
	if !reflect.DeepEqual(before, after) {
		t.Error("failed update modified the file")
	}

	// No stray temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "settings.ron" {
			t.Errorf("stray file left behind: %s", e.Name())
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`"just a string"`)); err == nil {
		t.Error("expected error for non-struct document")
	}
	if _, err := Parse([]byte(`(broken`)); err == nil {
		t.Error("expected error for truncated document")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ron")); err == nil {
		t.Error("expected error for missing file")
	}
}
