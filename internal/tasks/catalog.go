package tasks

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fastrand"
	"gopkg.in/yaml.v3"
)

//go:embed tasks.yaml
var defaultCatalog []byte

var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrEmptyCatalog = errors.New("catalog has no tasks")
)

// Catalog lists the prompts a round can be played with, per mode.
type Catalog struct {
	Chat []string `yaml:"chat"`
	Draw []string `yaml:"draw"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded task catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Blank entries are dropped and at least one
// task must remain.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode task catalog: %w", err)
	}
	c.Chat = compact(c.Chat)
	c.Draw = compact(c.Draw)
	if len(c.Chat) == 0 && len(c.Draw) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &c, nil
}

func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Tasks returns the tasks for a mode.
func (c *Catalog) Tasks(mode string) ([]string, error) {
	switch mode {
	case "chat":
		return c.Chat, nil
	case "draw":
		return c.Draw, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Pick returns a random task for the mode.
func (c *Catalog) Pick(mode string) (string, error) {
	list, err := c.Tasks(mode)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("%w for mode %q", ErrEmptyCatalog, mode)
	}
	return list[fastrand.Uint32n(uint32(len(list)))], nil
}
