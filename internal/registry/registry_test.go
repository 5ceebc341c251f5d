package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/logutil"
	"github.com/ukcompliance/complianceengine/internal/module"
)

type stubGate struct{ moduleID, gateID string }

func (g stubGate) ModuleID() string                                { return g.moduleID }
func (g stubGate) GateID() string                                  { return g.gateID }
func (g stubGate) LegalSource() string                             { return "stub" }
func (g stubGate) IsRelevant(text, documentType string) bool       { return true }
func (g stubGate) Check(text, documentType string) finding.Finding  { return finding.Finding{} }

func TestRegistry_LazyBuildsOnce(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	calls := 0
	r.Register("fca_uk", func() (module.Module, error) {
		calls++
		return module.Module{ID: "fca_uk", Gates: []gate.Gate{stubGate{moduleID: "fca_uk", gateID: "risk_warning"}}}, nil
	})

	_, err := r.Get("fca_uk")
	require.NoError(t, err)
	_, err = r.Get("fca_uk")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestRegistry_UnknownModule(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	_, err := r.Get("missing")
	assert.Error(t, err)
}

func TestRegistry_InvalidModuleCaches(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	calls := 0
	r.Register("fca_uk", func() (module.Module, error) {
		calls++
		return module.Module{
			ID: "fca_uk",
			Gates: []gate.Gate{
				stubGate{moduleID: "fca_uk", gateID: "dup"},
				stubGate{moduleID: "fca_uk", gateID: "dup"},
			},
		}, nil
	})

	_, err := r.Get("fca_uk")
	assert.Error(t, err)
	_, err = r.Get("fca_uk")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRegistry_RegisterInvalidatesCache(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	r.Register("fca_uk", func() (module.Module, error) {
		return module.Module{ID: "fca_uk", Gates: []gate.Gate{stubGate{moduleID: "fca_uk", gateID: "a"}}}, nil
	})
	m, err := r.Get("fca_uk")
	require.NoError(t, err)
	require.Len(t, m.Gates, 1)

	r.Register("fca_uk", func() (module.Module, error) {
		return module.Module{ID: "fca_uk", Gates: []gate.Gate{stubGate{moduleID: "fca_uk", gateID: "b"}}}, nil
	})
	m, err = r.Get("fca_uk")
	require.NoError(t, err)
	assert.Equal(t, "b", m.Gates[0].GateID())
}

func TestRegistry_GetAll_StopsAtFirstError(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	r.Register("fca_uk", func() (module.Module, error) {
		return module.Module{ID: "fca_uk", Gates: []gate.Gate{stubGate{moduleID: "fca_uk", gateID: "a"}}}, nil
	})

	_, err := r.GetAll([]string{"fca_uk", "missing"})
	assert.Error(t, err)
}

func TestRegistry_DisableExcludesFromListAvailableAndGet(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	r.Register("fca_uk", func() (module.Module, error) { return module.Module{ID: "fca_uk"}, nil })
	r.Register("gdpr_uk", func() (module.Module, error) { return module.Module{ID: "gdpr_uk"}, nil })

	r.Disable("fca_uk")
	assert.Equal(t, []string{"gdpr_uk"}, r.ListAvailable())
	_, err := r.Get("fca_uk")
	assert.Error(t, err)

	r.Enable("fca_uk")
	assert.Equal(t, []string{"fca_uk", "gdpr_uk"}, r.ListAvailable())
	_, err = r.Get("fca_uk")
	assert.NoError(t, err)
}

func TestRegistry_IDs_SortedRegardlessOfConstruction(t *testing.T) {
	r := NewRegistry(logutil.NewTestLogger(t))
	r.Register("gdpr_uk", func() (module.Module, error) { return module.Module{ID: "gdpr_uk"}, nil })
	r.Register("fca_uk", func() (module.Module, error) { return module.Module{ID: "fca_uk"}, nil })

	assert.Equal(t, []string{"fca_uk", "gdpr_uk"}, r.IDs())
}
