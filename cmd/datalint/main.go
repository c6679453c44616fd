// datalint checks the game data directory for broken shader descriptors
// and sound map problems.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/coldforge/outpost/internal/config"
	"github.com/coldforge/outpost/internal/logger"
	"github.com/coldforge/outpost/pkg/shader"
	"github.com/coldforge/outpost/pkg/soundmap"
)

var (
	flagTexture = flag.String("texture", "", "Resolve a texture path against the sound map and exit")
	flagKind    = flag.String("kind", "", "With -texture, also pick a sound of this kind (Impact or FootStep)")
	flagSeed    = flag.Int64("seed", 0, "Random seed for -kind sound selection")
	flagStrict  = flag.Bool("strict", false, "Treat warnings as errors")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	opts := logger.DefaultOptions()
	opts.Level = cfg.Logging.Level
	opts.File = cfg.Logging.LogFile
	if err := logger.Setup(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *flagTexture != "" {
		os.Exit(queryTexture(cfg, *flagTexture, *flagKind, *flagSeed))
	}

	errs, warns := lintShaders(cfg)
	serrs, swarns := lintSoundMap(cfg)
	errs += serrs
	warns += swarns

	fmt.Printf("\n%d error(s), %d warning(s)\n", errs, warns)
	if errs > 0 || (*flagStrict && warns > 0) {
		os.Exit(1)
	}
}

// queryTexture resolves a single texture path, suggesting close matches on a
// miss. Returns the process exit code.
func queryTexture(cfg *config.Config, texture, kind string, seed int64) int {
	base, err := soundmap.LoadBase(filepath.Join(cfg.Data.Root, cfg.Data.SoundMap))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	res := soundmap.NewResolver(base)

	mat, ok := res.ResolveMaterial(texture)
	if !ok {
		fmt.Printf("%s: no material mapping\n", texture)
		for _, s := range res.Suggest(texture, cfg.Lint.MaxSuggestions) {
			fmt.Printf("  did you mean %q?\n", s)
		}
		return 1
	}
	fmt.Printf("%s: %s\n", texture, mat)

	if kind == "" {
		return 0
	}
	k, err := soundmap.ParseSoundKind(kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rng := rand.New(rand.NewSource(seed))
	sound, ok := res.PickSound(mat, k, rng)
	if !ok {
		fmt.Printf("  no %s sound for %s (silent)\n", k, mat)
		return 0
	}
	fmt.Printf("  %s: %s\n", k, sound)
	return 0
}

func lintShaders(cfg *config.Config) (errs, warns int) {
	dir := filepath.Join(cfg.Data.Root, cfg.Data.ShaderDir)
	logger.S.Debugf("linting shaders in %s", dir)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".shader" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("ERROR %s: %v\n", path, err)
			errs++
			return nil
		}

		desc, variant, err := shader.ParseVariant(data)
		if err != nil {
			fmt.Printf("ERROR %s: %v\n", path, err)
			errs++
			return nil
		}
		if variant == shader.VariantLegacy {
			fmt.Printf("WARN  %s: legacy properties schema, run shadermigrate\n", path)
			warns++
		}
		for _, problem := range desc.Validate() {
			fmt.Printf("ERROR %s: %v\n", path, problem)
			errs++
		}
		logger.S.Debugf("%s: %d resources, %d passes", path, len(desc.Resources), len(desc.Passes))
		return nil
	})
	if walkErr != nil {
		logger.L.Error("shader walk failed", zap.String("dir", dir), zap.Error(walkErr))
		fmt.Printf("ERROR %s: %v\n", dir, walkErr)
		errs++
	}
	return errs, warns
}

func lintSoundMap(cfg *config.Config) (errs, warns int) {
	path := filepath.Join(cfg.Data.Root, cfg.Data.SoundMap)
	base, err := soundmap.LoadBase(path)
	if err != nil {
		fmt.Printf("ERROR %s: %v\n", path, err)
		return 1, 0
	}

	for _, conflict := range base.Conflicts {
		fmt.Printf("WARN  %s: duplicate texture key %q, first entry wins\n", path, conflict)
		warns++
	}
	for _, problem := range base.Validate() {
		fmt.Printf("ERROR %s: %v\n", path, problem)
		errs++
	}

	// Sound paths are project-relative and should point at real audio files.
	// Empty lists are legal silence, worth a note but not a warning.
	for mat, kinds := range base.MaterialToSound {
		for kind, sounds := range kinds {
			if len(sounds) == 0 {
				fmt.Printf("NOTE  %s: %s/%s has no sounds (silent)\n", path, mat, kind)
				continue
			}
			for _, s := range sounds {
				if !plausibleExt(s, cfg.Lint.SoundExtensions) {
					fmt.Printf("WARN  %s: %s/%s sound %q has unexpected extension\n", path, mat, kind, s)
					warns++
					continue
				}
				if _, err := os.Stat(filepath.FromSlash(s)); err != nil {
					fmt.Printf("WARN  %s: %s/%s sound %q not found\n", path, mat, kind, s)
					warns++
				}
			}
		}
	}
	return errs, warns
}

func plausibleExt(path string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
