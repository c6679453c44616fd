package soundmap

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/agnivade/levenshtein"
)

// Resolver answers contact-event queries against a loaded Base. It holds no
// mutable state; any number of goroutines may query it concurrently.
type Resolver struct {
	base *Base
}

// NewResolver wraps a loaded Base.
func NewResolver(base *Base) *Resolver {
	return &Resolver{base: base}
}

// Base returns the underlying tables.
func (r *Resolver) Base() *Base {
	return r.base
}

// ResolveMaterial maps a texture path to its physical material. There is no
// fallback material: a texture absent from the table resolves to nothing
// and the contact event makes no sound.
func (r *Resolver) ResolveMaterial(texturePath string) (MaterialType, bool) {
	m, ok := r.base.TextureToMaterial[NormalizePath(texturePath)]
	return m, ok
}

// Sounds returns the declared sound list for a material and event kind.
// The returned slice is the table's own; callers must not modify it.
func (r *Resolver) Sounds(m MaterialType, k SoundKind) []string {
	kinds, ok := r.base.MaterialToSound[m]
	if !ok {
		return nil
	}
	return kinds[k]
}

// PickSound selects one sound uniformly at random from the list declared
// for the material and kind. A missing or empty list yields no sound. The
// caller supplies the random source, so selection is reproducible under a
// seeded generator.
func (r *Resolver) PickSound(m MaterialType, k SoundKind, rng *rand.Rand) (string, bool) {
	sounds := r.Sounds(m, k)
	if len(sounds) == 0 {
		return "", false
	}
	return sounds[rng.Intn(len(sounds))], true
}

// Suggest returns up to n texture keys closest to the query by edit
// distance, nearest first. Keys further than half the query length away are
// not worth suggesting and are skipped.
func (r *Resolver) Suggest(texturePath string, n int) []string {
	query := NormalizePath(texturePath)
	if query == "" || n <= 0 {
		return nil
	}
	maxDist := len(query) / 2

	type scored struct {
		key  string
		dist int
	}
	var candidates []scored
	for key := range r.base.TextureToMaterial {
		d := levenshtein.ComputeDistance(query, key)
		if d <= maxDist {
			candidates = append(candidates, scored{key, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].key < candidates[j].key
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.key
	}
	return out
}

// Shared is a process-wide handle to the current resolver. Hot reloads swap
// the whole resolver atomically; concurrent readers see either the old or
// the new table, never a mix.
type Shared struct {
	current atomic.Pointer[Resolver]
}

// NewShared creates a handle holding the given resolver.
func NewShared(r *Resolver) *Shared {
	s := &Shared{}
	s.current.Store(r)
	return s
}

// Resolver returns the current resolver.
func (s *Shared) Resolver() *Resolver {
	return s.current.Load()
}

// Swap replaces the resolver wholesale and returns the previous one.
func (s *Shared) Swap(r *Resolver) *Resolver {
	return s.current.Swap(r)
}
