package icons

import (
	"fmt"
	"sort"
	"strings"

	pwaerrors "github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// BackendAuto lets the chain pick the best working backend
const BackendAuto = "auto"

// BackendChain holds backends ordered by priority
type BackendChain struct {
	backends []Backend
	disabled map[string]bool
	logger   utils.Logger
}

// NewBackendChain creates a chain with the given backends
func NewBackendChain(logger utils.Logger, backends ...Backend) *BackendChain {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	bc := &BackendChain{disabled: make(map[string]bool), logger: logger}
	for _, b := range backends {
		bc.AddBackend(b)
	}
	return bc
}

// DefaultChain returns the vector, raster and minimal backends
func DefaultChain(logger utils.Logger) *BackendChain {
	return NewBackendChain(logger, NewVectorBackend(), NewRasterBackend(), NewMinimalBackend())
}

// AddBackend adds a backend to the chain
func (bc *BackendChain) AddBackend(b Backend) {
	bc.backends = append(bc.backends, b)
	sort.SliceStable(bc.backends, func(i, j int) bool {
		return bc.backends[i].Info().Priority < bc.backends[j].Info().Priority
	})
}

// Disable marks a backend unavailable without removing it
func (bc *BackendChain) Disable(name string) {
	bc.disabled[name] = true
}

// Backends returns info about every backend in priority order
func (bc *BackendChain) Backends() []BackendInfo {
	infos := make([]BackendInfo, 0, len(bc.backends))
	for _, b := range bc.backends {
		infos = append(infos, b.Info())
	}
	return infos
}

// Select returns the first working backend. A preferred name other than
// auto is tried first; every fallback is logged as a warning.
func (bc *BackendChain) Select(preferred string) (Backend, error) {
	preferred = strings.ToLower(strings.TrimSpace(preferred))

	candidates := make([]Backend, 0, len(bc.backends))
	if preferred != "" && preferred != BackendAuto {
		found := false
		for _, b := range bc.backends {
			if b.Info().Name == preferred {
				candidates = append(candidates, b)
				found = true
			}
		}
		if !found {
			bc.logger.Warn("Unknown image backend %q, falling back to auto selection", preferred)
		}
	}
	for _, b := range bc.backends {
		if b.Info().Name != preferred {
			candidates = append(candidates, b)
		}
	}

	var tried []string
	for i, b := range candidates {
		info := b.Info()
		tried = append(tried, info.Name)

		if bc.disabled[info.Name] {
			bc.logger.Debug("Skipping disabled backend: %s", info.Name)
			continue
		}
		if err := probe(b); err != nil {
			bc.logger.Warn("Image backend %s unavailable: %v", info.Name, err)
			continue
		}
		if i > 0 {
			bc.logger.Warn("Using fallback image backend %s (quality: %s)", info.Name, info.Quality)
		} else {
			bc.logger.Debug("Using image backend %s", info.Name)
		}
		return b, nil
	}
	return nil, pwaerrors.NewMissingBackendError(tried)
}

// probe runs Probe, turning a panic into an error
func probe(b Backend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return b.Probe()
}
