package app

import (
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/modules/text"
	"github.com/vk/transtab/modules/validate"
)

// coreModules is the definitive list of all modules that are compiled into
// the transtab binary.
var coreModules = []registry.Module{
	&validate.Module{},
	&text.Module{},
}
