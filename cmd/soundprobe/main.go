// soundprobe resolves a texture path to a material sound and plays it,
// so sound designers can audition the mapping without launching the game.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/coldforge/outpost/internal/config"
	"github.com/coldforge/outpost/internal/logger"
	"github.com/coldforge/outpost/pkg/soundmap"
)

var (
	flagTexture = flag.String("texture", "", "Texture path to resolve")
	flagKind    = flag.String("kind", "FootStep", "Sound kind to play (Impact or FootStep)")
	flagSeed    = flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flagDry     = flag.Bool("dry", false, "Resolve and print without playing audio")
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

	if *flagTexture == "" {
		fmt.Fprintln(os.Stderr, "Usage: soundprobe -texture <path> [-kind Impact|FootStep] [-seed N] [-dry]")
		os.Exit(1)
	}

	kind, err := soundmap.ParseSoundKind(*flagKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	base, err := soundmap.LoadBase(filepath.Join(cfg.Data.Root, cfg.Data.SoundMap))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res := soundmap.NewResolver(base)

	mat, ok := res.ResolveMaterial(*flagTexture)
	if !ok {
		fmt.Printf("%s: no material mapping\n", *flagTexture)
		for _, s := range res.Suggest(*flagTexture, cfg.Lint.MaxSuggestions) {
			fmt.Printf("  did you mean %q?\n", s)
		}
		os.Exit(1)
	}

	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	sound, ok := res.PickSound(mat, kind, rng)
	if !ok {
		fmt.Printf("%s -> %s: no %s sound (silent)\n", *flagTexture, mat, kind)
		return
	}
	fmt.Printf("%s -> %s: %s\n", *flagTexture, mat, sound)

	if *flagDry {
		return
	}
	if err := play(cfg, filepath.FromSlash(sound)); err != nil {
		fmt.Fprintf(os.Stderr, "Playback error: %v\n", err)
		os.Exit(1)
	}
}

func play(cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	defer streamer.Close()

	out := beep.SampleRate(cfg.Audio.SampleRate)
	if err := speaker.Init(out, out.N(time.Duration(cfg.Audio.BufferMillis)*time.Millisecond)); err != nil {
		return err
	}

	var s beep.Streamer = streamer
	if format.SampleRate != out {
		s = beep.Resample(4, format.SampleRate, out, s)
	}
	s = volume(s, cfg.Audio.Volume)

	logger.S.Debugf("playing %s at %d Hz", path, format.SampleRate)
	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// volume wraps a streamer with a gain control. math.Log2(0) is -Inf, so
// zero volume is handled by muting instead.
func volume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
