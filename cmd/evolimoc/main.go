// Command evolimoc compiles every registered definition module into
// its IR and visual-mapping JSON pair under a _gen/<name>/ directory
// (spec §6), the way the teacher's samples/*/main.go drives a device
// build through a handful of fluent builders before handing off to the
// engine.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/runconfig"
	"github.com/evolimo/evolimo/internal/xlog"

	_ "github.com/evolimo/evolimo/definitions/conditional"
	_ "github.com/evolimo/evolimo/definitions/dragdemo"
	_ "github.com/evolimo/evolimo/definitions/gridgravity"
	_ "github.com/evolimo/evolimo/definitions/passthrough"
	_ "github.com/evolimo/evolimo/definitions/softmaxheads"
	_ "github.com/evolimo/evolimo/definitions/toruswrap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML run config; flags below override it")
	outDir := flag.String("out", "", "output directory for compiled IR (overrides config output_dir)")
	flag.Parse()

	cfg := runconfig.Default()
	if *configPath != "" {
		loaded, err := runconfig.Load(*configPath)
		if err != nil {
			xlog.Logger().Error("failed to load run config", "err", err)
			atexit.Exit(1)
			return
		}
		cfg = loaded
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	names := cfg.Definitions
	if len(names) == 0 {
		names = definition.Names()
	}

	failed := false
	for _, name := range names {
		if err := compileOne(name, cfg.OutputDir); err != nil {
			xlog.Logger().Error("compile failed", "definition", name, "err", err)
			failed = true
			continue
		}
		xlog.Logger().Info("compiled", "definition", name)
	}

	if failed {
		atexit.Exit(1)
		return
	}
	atexit.Exit(0)
}

func compileOne(name, outDir string) error {
	build, ok := definition.Lookup(name)
	if !ok {
		return &definitionNotFoundError{name}
	}
	def := build()

	out, _, err := compiler.Compile(def)
	if err != nil {
		return err
	}

	dir := filepath.Join(outDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	irBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "ir.json"), irBytes, 0o644); err != nil {
		return err
	}

	visual := visualFor(def)
	visualBytes, err := json.MarshalIndent(visual, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "visual.json"), visualBytes, 0o644)
}

// visualFor returns the definition's visual mapping, or an empty one
// if it declared none; the core passes this through unvalidated.
func visualFor(def *definition.Definition) definition.VisualMapping {
	if def.Visual != nil {
		return *def.Visual
	}
	return definition.VisualMapping{}
}

type definitionNotFoundError struct{ name string }

func (e *definitionNotFoundError) Error() string {
	return "evolimoc: no registered definition named " + e.name
}
