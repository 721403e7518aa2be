package store

import (
	"testing"

	"github.com/openziti/virgo/kernel/model"
)

func TestProviderTypes(t *testing.T) {
	types := ProviderTypes()
	if len(types) != 2 || types[0] != ProviderEc2 || types[1] != ProviderMemory {
		t.Errorf("unexpected provider types %v", types)
	}
}

func TestOpen_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Provider = "gce"

	if _, err := Open(cfg); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestRegisterProviderType_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	RegisterProviderType(ProviderMemory, OpenMemory)
}
