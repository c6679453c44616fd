// shadermigrate rewrites shader descriptors using the legacy flat
// properties schema into the current resources schema.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coldforge/outpost/pkg/shader"
)

func main() {
	write := flag.Bool("write", false, "Rewrite legacy files in place (default is a dry run)")
	out := flag.String("out", "", "Write migrated files to this directory instead of in place")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	migrated, failed := 0, 0
	for _, arg := range flag.Args() {
		info, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed++
			continue
		}

		if !info.IsDir() {
			m, f := migrate(arg, *write, *out)
			migrated, failed = migrated+m, failed+f
			continue
		}

		walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".shader" {
				return nil
			}
			m, f := migrate(path, *write, *out)
			migrated, failed = migrated+m, failed+f
			return nil
		})
		if walkErr != nil {
			fmt.Fprintf(os.Stderr, "Error walking %s: %v\n", arg, walkErr)
			failed++
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d file(s) migrated, %d failure(s)\n", migrated, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `shadermigrate - upgrade legacy shader descriptors

Usage:
  shadermigrate [options] <file.shader | directory> ...

Options:
  -write        rewrite legacy files in place
  -out <dir>    write migrated files to <dir> instead

Without -write or -out this is a dry run: legacy files are listed and
the migrated output is printed to stdout.`)
}

// migrate converts one file. Returns (migrated, failed) counts of 0 or 1.
func migrate(path string, write bool, outDir string) (int, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 0, 1
	}

	desc, variant, err := shader.ParseVariant(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		return 0, 1
	}
	if variant == shader.VariantCanonical {
		fmt.Fprintf(os.Stderr, "Skipping %s: already current schema\n", path)
		return 0, 0
	}

	encoded := shader.Encode(desc)

	switch {
	case outDir != "":
		target := filepath.Join(outDir, filepath.Base(path))
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 0, 1
		}
		if err := os.WriteFile(target, encoded, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", target, err)
			return 0, 1
		}
		fmt.Fprintf(os.Stderr, "Migrated: %s -> %s\n", path, target)
	case write:
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			return 0, 1
		}
		fmt.Fprintf(os.Stderr, "Migrated: %s\n", path)
	default:
		fmt.Fprintf(os.Stderr, "Would migrate: %s\n", path)
		os.Stdout.Write(encoded)
	}
	return 1, 0
}
