// Package modules wires each regulatory module's Build and Snippets
// functions into the shared registry.Registry and snippet.Registry. It
// is the single place a new module is added to the running engine.
package modules

import (
	"fmt"

	"github.com/ukcompliance/complianceengine/internal/logutil"
	"github.com/ukcompliance/complianceengine/internal/modules/employment"
	"github.com/ukcompliance/complianceengine/internal/modules/fca"
	"github.com/ukcompliance/complianceengine/internal/modules/gdpr"
	"github.com/ukcompliance/complianceengine/internal/modules/nda"
	"github.com/ukcompliance/complianceengine/internal/modules/scottish"
	"github.com/ukcompliance/complianceengine/internal/modules/tax"
	"github.com/ukcompliance/complianceengine/internal/registry"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// entry pairs a module's builder with the snippet set it contributes.
type entry struct {
	id       string
	build    registry.Builder
	snippets func() []snippet.Snippet
}

// catalogue lists every module this build ships, in registration order.
var catalogue = []entry{
	{id: fca.ModuleID, build: fca.Build, snippets: fca.Snippets},
	{id: gdpr.ModuleID, build: gdpr.Build, snippets: gdpr.Snippets},
	{id: employment.ModuleID, build: employment.Build, snippets: employment.Snippets},
	{id: scottish.ModuleID, build: scottish.Build, snippets: scottish.Snippets},
	{id: nda.ModuleID, build: nda.Build, snippets: nda.Snippets},
	{id: tax.ModuleID, build: tax.Build, snippets: tax.Snippets},
}

// RegisterAll registers every catalogued module's builder into modules
// and every catalogued snippet into snippets. It is the only function
// callers outside this package need.
func RegisterAll(modulesReg *registry.Registry, snippetsReg *snippet.Registry) error {
	for _, e := range catalogue {
		modulesReg.Register(e.id, e.build)
		for _, s := range e.snippets() {
			if err := snippetsReg.Register(s, false); err != nil {
				return fmt.Errorf("modules: registering snippets for %q: %w", e.id, err)
			}
		}
	}
	return nil
}

// NewRegistries builds and populates a fresh module and snippet registry
// pair, the setup every command-line entry point and integration test
// needs.
func NewRegistries(logger logutil.LoggerInterface) (*registry.Registry, *snippet.Registry, error) {
	modulesReg := registry.NewRegistry(logger)
	snippetsReg := snippet.NewRegistry()
	if err := RegisterAll(modulesReg, snippetsReg); err != nil {
		return nil, nil, err
	}
	return modulesReg, snippetsReg, nil
}

// IDs returns every catalogued module ID in registration order, for
// default-enablement and CLI help text.
func IDs() []string {
	ids := make([]string, len(catalogue))
	for i, e := range catalogue {
		ids[i] = e.id
	}
	return ids
}
