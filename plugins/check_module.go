package plugins

import (
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/modules/size_check"
)

func newCheckModule(def CheckDefinition, overrides module.Config) (*size_check.Module, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	normalized := def.Normalized()
	threshold, err := normalized.Threshold()
	if err != nil {
		return nil, err
	}
	info := module.Info{
		ID:          normalized.ID,
		Name:        defaultCheckName(normalized),
		Description: normalized.Description,
		Version:     normalized.Version,
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	mod := size_check.NewCheck(info,
		size_check.WithTrackedDirs(normalized.Directories...),
		size_check.WithThreshold(threshold),
		size_check.WithTotalLabel(normalized.Label),
	)
	if err := mod.ApplyConfig(overrides); err != nil {
		return nil, err
	}
	return mod, nil
}
