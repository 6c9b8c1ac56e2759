// Package sheets holds the built-in scores and loads score files from disk.
package sheets

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cbegin/pianoduet-go/internal/score"
)

//go:embed data/*.yaml
var builtin embed.FS

// Names lists the built-in sheets.
func Names() []string {
	entries, err := builtin.ReadDir("data")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(out)
	return out
}

// Builtin returns the named built-in sheet.
func Builtin(name string) (*score.Score, error) {
	data, err := builtin.ReadFile(path.Join("data", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown sheet %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	sc, err := score.ParseSheet(data)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", name, err)
	}
	return sc, nil
}

// Load resolves ref as a YAML file when it names one on disk, otherwise as a
// built-in sheet.
func Load(ref string) (*score.Score, error) {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read sheet: %w", err)
		}
		sc, err := score.ParseSheet(data)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", ref, err)
		}
		return sc, nil
	}
	return Builtin(ref)
}
