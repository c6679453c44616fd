// Package editorcfg reads and writes the level editor's preferences file.
//
// The document carries UI preferences, key bindings, build/run profiles and
// per-scene camera and outliner state. The editor owns the schema and grows
// it freely, so the file is kept as a generic value tree and round-tripped
// losslessly: accessors touch only the nodes they know about and everything
// else survives a load/save cycle untouched.
package editorcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coldforge/outpost/pkg/ron"
)

// ErrBadDocument is returned when the file is not a settings document.
var ErrBadDocument = errors.New("editorcfg: malformed settings document")

// Document is a loaded settings file.
type Document struct {
	root ron.Struct
}

// Parse parses a settings document.
func Parse(data []byte) (*Document, error) {
	v, err := ron.Parse(data)
	if err != nil {
		return nil, err
	}
	s, ok := v.(ron.Struct)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a struct", ErrBadDocument)
	}
	return &Document{root: s}, nil
}

// Load reads and parses a settings file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading editor settings: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode serializes the document.
func (d *Document) Encode() []byte {
	return ron.Marshal(d.root)
}

// Save writes the document to path via a temporary file and rename, so an
// interrupted write never leaves a truncated settings file behind.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".settings-*.ron")
	if err != nil {
		return fmt.Errorf("saving editor settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(d.Encode()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("saving editor settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving editor settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving editor settings: %w", err)
	}
	return nil
}

// Update loads the file, hands the document to fn, and writes it back when
// fn succeeds. The write-back happens even if fn made no changes, keeping
// the on-disk form normalized.
func Update(path string, fn func(*Document) error) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return doc.Save(path)
}

// Root returns the underlying value tree for callers that need fields this
// package has no accessor for.
func (d *Document) Root() ron.Struct {
	return d.root
}

// RecentScenes returns the recent-scene list, most recent first. Entries
// that are not strings are skipped.
func (d *Document) RecentScenes() []string {
	list, ok := d.path("recent", "scenes")
	if !ok {
		return nil
	}
	l, ok := list.(ron.List)
	if !ok {
		return nil
	}
	var scenes []string
	for _, v := range l {
		if s, ok := v.(ron.String); ok {
			scenes = append(scenes, string(s))
		}
	}
	return scenes
}

// TouchRecentScene moves the scene to the front of the recent list,
// inserting it if absent.
func (d *Document) TouchRecentScene(scenePath string) {
	scenes := []string{scenePath}
	for _, s := range d.RecentScenes() {
		if s != scenePath {
			scenes = append(scenes, s)
		}
	}
	list := ron.List{}
	for _, s := range scenes {
		list = append(list, ron.String(s))
	}
	d.setPath(list, "recent", "scenes")
}

// CameraState is the saved editor camera pose of one scene.
type CameraState struct {
	Position [3]float64
	Yaw      float64
	Pitch    float64
}

// CameraFor returns the stored camera pose for a scene file.
func (d *Document) CameraFor(scenePath string) (CameraState, bool) {
	settings, ok := d.sceneEntry(scenePath)
	if !ok {
		return CameraState{}, false
	}
	camVal, ok := settings.Field("camera_settings")
	if !ok {
		return CameraState{}, false
	}
	cam, ok := camVal.(ron.Struct)
	if !ok {
		return CameraState{}, false
	}
	var state CameraState
	if pv, ok := cam.Field("position"); ok {
		if pos, ok := pv.(ron.Struct); ok && len(pos.Items) == 3 {
			for i, item := range pos.Items {
				state.Position[i], _ = floatOf(item)
			}
		}
	}
	if yv, ok := cam.Field("yaw"); ok {
		state.Yaw, _ = floatOf(yv)
	}
	if pv, ok := cam.Field("pitch"); ok {
		state.Pitch, _ = floatOf(pv)
	}
	return state, true
}

// SetCameraFor stores a camera pose for a scene file, preserving any other
// per-scene state (outliner expansion, node infos) already recorded.
func (d *Document) SetCameraFor(scenePath string, state CameraState) {
	settings, _ := d.sceneEntry(scenePath)
	cam := ron.Struct{Fields: []ron.Field{
		{Name: "position", Value: ron.Struct{Items: []ron.Value{
			ron.Float(state.Position[0]),
			ron.Float(state.Position[1]),
			ron.Float(state.Position[2]),
		}}},
		{Name: "yaw", Value: ron.Float(state.Yaw)},
		{Name: "pitch", Value: ron.Float(state.Pitch)},
	}}
	settings = setField(settings, "camera_settings", cam)
	d.setSceneEntry(scenePath, settings)
}

// ExpandedNodes returns the outliner expansion state for a scene file.
func (d *Document) ExpandedNodes(scenePath string) []string {
	settings, ok := d.sceneEntry(scenePath)
	if !ok {
		return nil
	}
	v, ok := settings.Field("expanded_nodes")
	if !ok {
		return nil
	}
	l, ok := v.(ron.List)
	if !ok {
		return nil
	}
	var nodes []string
	for _, nv := range l {
		if s, ok := nv.(ron.String); ok {
			nodes = append(nodes, string(s))
		}
	}
	return nodes
}

// Command is one external tool invocation of a build profile. The editor
// passes it to a process launcher verbatim; nothing here interprets it.
type Command struct {
	Command string
	Args    []string
	Env     map[string]string
}

// BuildProfile is a named build/run configuration, e.g. "Debug" or
// "Release (hot reload)".
type BuildProfile struct {
	Name          string
	BuildCommands []Command
	RunCommand    Command
}

// BuildProfiles returns the configured build profiles in declaration order.
func (d *Document) BuildProfiles() []BuildProfile {
	v, ok := d.path("build", "profiles")
	if !ok {
		return nil
	}
	l, ok := v.(ron.List)
	if !ok {
		return nil
	}
	var profiles []BuildProfile
	for _, pv := range l {
		ps, ok := pv.(ron.Struct)
		if !ok {
			continue
		}
		var p BuildProfile
		if nv, ok := ps.Field("name"); ok {
			if s, ok := nv.(ron.String); ok {
				p.Name = string(s)
			}
		}
		if cv, ok := ps.Field("build_commands"); ok {
			if cl, ok := cv.(ron.List); ok {
				for _, c := range cl {
					if cmd, ok := decodeCommand(c); ok {
						p.BuildCommands = append(p.BuildCommands, cmd)
					}
				}
			}
		}
		if rv, ok := ps.Field("run_command"); ok {
			if cmd, ok := decodeCommand(rv); ok {
				p.RunCommand = cmd
			}
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func decodeCommand(v ron.Value) (Command, bool) {
	s, ok := v.(ron.Struct)
	if !ok {
		return Command{}, false
	}
	var cmd Command
	if cv, ok := s.Field("command"); ok {
		if str, ok := cv.(ron.String); ok {
			cmd.Command = string(str)
		}
	}
	if av, ok := s.Field("args"); ok {
		if l, ok := av.(ron.List); ok {
			for _, a := range l {
				if str, ok := a.(ron.String); ok {
					cmd.Args = append(cmd.Args, string(str))
				}
			}
		}
	}
	if ev, ok := s.Field("environment_variables"); ok {
		if l, ok := ev.(ron.List); ok {
			for _, e := range l {
				es, ok := e.(ron.Struct)
				if !ok {
					continue
				}
				name, _ := es.Field("name")
				value, _ := es.Field("value")
				ns, nok := name.(ron.String)
				vs, vok := value.(ron.String)
				if nok && vok {
					if cmd.Env == nil {
						cmd.Env = make(map[string]string)
					}
					cmd.Env[string(ns)] = string(vs)
				}
			}
		}
	}
	return cmd, true
}

// sceneEntry returns the per-scene settings struct stored under
// scene_settings, keyed by scene file path.
func (d *Document) sceneEntry(scenePath string) (ron.Struct, bool) {
	v, ok := d.root.Field("scene_settings")
	if !ok {
		return ron.Struct{}, false
	}
	m, ok := v.(ron.Map)
	if !ok {
		return ron.Struct{}, false
	}
	ev, ok := m.Get(ron.String(scenePath))
	if !ok {
		return ron.Struct{}, false
	}
	s, ok := ev.(ron.Struct)
	return s, ok
}

func (d *Document) setSceneEntry(scenePath string, settings ron.Struct) {
	var m ron.Map
	if v, ok := d.root.Field("scene_settings"); ok {
		if existing, ok := v.(ron.Map); ok {
			m = existing
		}
	}
	key := ron.String(scenePath)
	replaced := false
	for i := range m {
		if ron.Equal(m[i].Key, key) {
			m[i].Value = settings
			replaced = true
			break
		}
	}
	if !replaced {
		m = append(m, ron.MapEntry{Key: key, Value: settings})
	}
	d.root = setField(d.root, "scene_settings", m)
}

// path walks nested struct fields from the root.
func (d *Document) path(names ...string) (ron.Value, bool) {
	var v ron.Value = d.root
	for _, name := range names {
		s, ok := v.(ron.Struct)
		if !ok {
			return nil, false
		}
		v, ok = s.Field(name)
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// setPath writes a value at a nested field path, creating intermediate
// structs as needed.
func (d *Document) setPath(value ron.Value, names ...string) {
	d.root = setPathIn(d.root, value, names)
}

func setPathIn(s ron.Struct, value ron.Value, names []string) ron.Struct {
	if len(names) == 1 {
		return setField(s, names[0], value)
	}
	var child ron.Struct
	if v, ok := s.Field(names[0]); ok {
		if cs, ok := v.(ron.Struct); ok {
			child = cs
		}
	}
	return setField(s, names[0], setPathIn(child, value, names[1:]))
}

func setField(s ron.Struct, name string, value ron.Value) ron.Struct {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			fields := make([]ron.Field, len(s.Fields))
			copy(fields, s.Fields)
			fields[i].Value = value
			s.Fields = fields
			return s
		}
	}
	fields := make([]ron.Field, len(s.Fields), len(s.Fields)+1)
	copy(fields, s.Fields)
	s.Fields = append(fields, ron.Field{Name: name, Value: value})
	return s
}

func floatOf(v ron.Value) (float64, bool) {
	switch t := v.(type) {
	case ron.Float:
		return float64(t), true
	case ron.Int:
		return float64(t), true
	default:
		return 0, false
	}
}
