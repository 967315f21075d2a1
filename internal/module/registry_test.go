package module

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubModule struct {
	Base
}

func (s *stubModule) Run(*ModuleContext) (Result, error) {
	return Result{Status: StatusCompleted}, nil
}

func newStub(info Info) Factory {
	return func(Config) (Module, error) {
		b := NewBase(info)
		return &stubModule{Base: b}, nil
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("beta", newStub(Info{ID: "beta", Name: "Beta", Version: "1.0.0"}))
	reg.MustRegister("alpha", newStub(Info{ID: "alpha", Name: "Alpha", Version: "1.0.0"}))
	if diff := cmp.Diff([]string{"alpha", "beta"}, reg.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	mod, err := reg.Resolve("alpha", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if mod.Info().Label() != "Alpha" {
		t.Fatalf("unexpected module: %+v", mod.Info())
	}
	if !reg.Has("beta") || reg.Has("gamma") {
		t.Fatalf("Has reported wrong membership")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	factory := newStub(Info{ID: "dup", Name: "Dup", Version: "1"})
	if err := reg.Register("dup", factory); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register("dup", factory); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := reg.Register("", factory); err == nil {
		t.Fatalf("expected empty id to fail")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatalf("expected nil factory to fail")
	}
}

func TestRegistryResolveErrors(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve("missing", nil); err == nil {
		t.Fatalf("expected unknown id to fail")
	}
	reg.MustRegister("noname", newStub(Info{ID: "noname", Version: "1"}))
	if _, err := reg.Resolve("noname", nil); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected info validation error, got %v", err)
	}
	boom := errors.New("boom")
	reg.MustRegister("broken", func(Config) (Module, error) { return nil, boom })
	if _, err := reg.Resolve("broken", nil); !errors.Is(err, boom) {
		t.Fatalf("expected factory error to be wrapped, got %v", err)
	}
}
