package modules

import (
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/modules/size_check"
)

// RegisterBuiltins installs all of the built-in module factories into the
// provided registry.
func RegisterBuiltins(reg *module.Registry) {
	if reg == nil {
		return
	}
	size_check.Register(reg)
}
