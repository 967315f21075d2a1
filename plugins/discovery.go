package plugins

import (
	"fmt"

	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/module"
)

// RegisterCheckPlugins discovers YAML check definitions under .sizegate/checks and registers them.
func RegisterCheckPlugins(reg *module.Registry, cfg *config.Config) error {
	if reg == nil || cfg == nil {
		return nil
	}
	defs, err := LoadDefinitionDir(cfg.ChecksDir())
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}
	seen := make(map[string]string)
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.ID]; ok {
			return fmt.Errorf("plugin: duplicate check id %s (%s and %s)", def.ID, existing, file.Path)
		}
		seen[def.ID] = file.Path
		defCopy := def
		if err := reg.Register(defCopy.ID, func(cfg module.Config) (module.Module, error) {
			mod, err := newCheckModule(defCopy, cfg)
			if err != nil {
				return nil, err
			}
			return mod, nil
		}); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", def.ID, file.Path, err)
		}
	}
	return nil
}
