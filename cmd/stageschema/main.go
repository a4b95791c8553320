// Command stageschema writes the JSON schemas for stage documents and
// brain tables so editors can validate the YAML files.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/gist-rs/the-rust-of-us/internal/stage"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "output directory for the JSON schemas")
	flag.Parse()

	if outDir == "" {
		log.Fatal("stageschema: missing -out directory")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("stageschema: create output dir: %v", err)
	}

	write(filepath.Join(outDir, "stage.schema.json"), stage.Schema())
	write(filepath.Join(outDir, "brains.schema.json"), stage.BrainSchema())
}

func write(path string, schema *jsonschema.Schema) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("stageschema: marshal %s: %v", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("stageschema: write %s: %v", filepath.Base(path), err)
	}
	log.Printf("stageschema: wrote %s", path)
}
