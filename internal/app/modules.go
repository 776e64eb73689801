package app

import (
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/modules/attach"
	"github.com/vk/recipego/modules/make"
	"github.com/vk/recipego/modules/python"
	"github.com/vk/recipego/modules/sh"
	"github.com/vk/recipego/modules/svn"
	"github.com/vk/recipego/modules/xslt"
)

// coreModules is the definitive list of all action modules that are
// compiled into the recipego binary.
var coreModules = []registry.Module{
	&sh.Module{},
	&svn.Module{},
	&make.Module{},
	&python.Module{},
	&xslt.Module{},
	&attach.Module{},
}
