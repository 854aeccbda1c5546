package app

import (
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/ports/bzip2"
	"github.com/vk/portsmith/ports/giflib"
	"github.com/vk/portsmith/ports/ogg"
	"github.com/vk/portsmith/ports/vorbis"
	"github.com/vk/portsmith/ports/zlib"
)

// corePorts is the definitive list of all port manifests compiled into the
// portsmith binary. Registration order is the deterministic tie-breaker for
// resolution, so keep it stable.
func corePorts() []registry.Port {
	return []registry.Port{
		bzip2.New(),
		giflib.New(),
		ogg.New(),
		vorbis.New(),
		zlib.New(),
	}
}
