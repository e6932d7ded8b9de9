package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

// recorder collects lifecycle events in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

type lifecycleModule struct {
	id       ModuleID
	rec      *recorder
	startErr error
}

func (m *lifecycleModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: m.id, New: func() Module {
		return &lifecycleModule{id: m.id, rec: m.rec, startErr: m.startErr}
	}}
}

func (m *lifecycleModule) Start() error {
	m.rec.add("start " + string(m.id))
	return m.startErr
}

func (m *lifecycleModule) Stop(_ context.Context) error {
	m.rec.add("stop " + string(m.id))
	return nil
}

// stopOnlyModule owns a resource but has no background work.
type stopOnlyModule struct {
	id  ModuleID
	rec *recorder
}

func (m *stopOnlyModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: m.id, New: func() Module { return &stopOnlyModule{id: m.id, rec: m.rec} }}
}

func (m *stopOnlyModule) Stop(_ context.Context) error {
	m.rec.add("stop " + string(m.id))
	return nil
}

func TestApp_StartStopOrder(t *testing.T) {
	t.Cleanup(resetRegistry)

	rec := &recorder{}
	RegisterModule(&stopOnlyModule{id: "memory.test", rec: rec})
	RegisterModule(&lifecycleModule{id: "gateway.test", rec: rec})

	app := NewApp(NewAppContext(nil, t.TempDir()))
	if err := app.LoadModules([]string{"memory.test", "gateway.test"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	app.Stop()

	want := []string{"start gateway.test", "stop gateway.test", "stop memory.test"}
	if got := rec.list(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestApp_StartFailureStopsEarlierModules(t *testing.T) {
	t.Cleanup(resetRegistry)

	rec := &recorder{}
	RegisterModule(&stopOnlyModule{id: "memory.test", rec: rec})
	RegisterModule(&lifecycleModule{id: "gateway.test", rec: rec, startErr: errors.New("bind failed")})

	app := NewApp(NewAppContext(nil, t.TempDir()))
	if err := app.LoadModules([]string{"memory.test", "gateway.test"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if err := app.Start(); err == nil {
		t.Fatal("expected start error")
	}

	want := []string{"start gateway.test", "stop memory.test"}
	if got := rec.list(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	t.Cleanup(resetRegistry)

	rec := &recorder{}
	RegisterModule(&lifecycleModule{id: "gateway.test", rec: rec})

	app := NewApp(NewAppContext(nil, t.TempDir()))
	if err := app.LoadModules([]string{"gateway.test"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"start gateway.test", "stop gateway.test"}
	if got := rec.list(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestApp_Module(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&stopOnlyModule{id: "memory.test", rec: &recorder{}})

	app := NewApp(NewAppContext(nil, t.TempDir()))
	if err := app.LoadModules([]string{"memory.test"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	defer app.Close()

	if _, ok := app.Module("memory.test"); !ok {
		t.Error("loaded module not found")
	}
	if _, ok := app.Module("memory.other"); ok {
		t.Error("unexpected module found")
	}
}

func TestModuleID_Parts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id        ModuleID
		namespace string
		name      string
	}{
		{id: "provider.openai", namespace: "provider", name: "openai"},
		{id: "memory.sqlite", namespace: "memory", name: "sqlite"},
		{id: "telemetry.otlp", namespace: "telemetry", name: "otlp"},
		{id: "bare", namespace: "bare", name: "bare"},
	}

	for _, tt := range tests {
		if got := tt.id.Namespace(); got != tt.namespace {
			t.Errorf("%s.Namespace() = %q, want %q", tt.id, got, tt.namespace)
		}
		if got := tt.id.Name(); got != tt.name {
			t.Errorf("%s.Name() = %q, want %q", tt.id, got, tt.name)
		}
	}
}

func TestRegisterModule_Duplicate(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&stopOnlyModule{id: "memory.dup", rec: &recorder{}})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterModule(&stopOnlyModule{id: "memory.dup", rec: &recorder{}})
}

type fixedInfoModule struct{ info ModuleInfo }

func (m fixedInfoModule) ModuleInfo() ModuleInfo { return m.info }

func TestRegisterModule_RejectsInvalidInfo(t *testing.T) {
	t.Cleanup(resetRegistry)

	newFn := func() Module { return fixedInfoModule{} }
	tests := []struct {
		name string
		info ModuleInfo
	}{
		{"empty id", ModuleInfo{New: newFn}},
		{"no namespace", ModuleInfo{ID: "sqlite", New: newFn}},
		{"empty namespace", ModuleInfo{ID: ".sqlite", New: newFn}},
		{"empty name", ModuleInfo{ID: "memory.", New: newFn}},
		{"nil constructor", ModuleInfo{ID: "memory.sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("RegisterModule(%+v) did not panic", tt.info)
				}
			}()
			RegisterModule(fixedInfoModule{info: tt.info})
		})
	}

	if got := GetModules(); len(got) != 0 {
		t.Errorf("catalog = %v, want empty after rejected registrations", got)
	}
}

func TestGetModules_SortedByID(t *testing.T) {
	t.Cleanup(resetRegistry)

	for _, id := range []ModuleID{"provider.openai", "gateway.http", "memory.sqlite", "memory.inmemory"} {
		RegisterModule(&stopOnlyModule{id: id, rec: &recorder{}})
	}

	var got []ModuleID
	for _, info := range GetModules() {
		got = append(got, info.ID)
	}
	want := []ModuleID{"gateway.http", "memory.inmemory", "memory.sqlite", "provider.openai"}
	if !slices.Equal(got, want) {
		t.Errorf("GetModules() = %v, want %v", got, want)
	}

	if _, ok := GetModule("memory.sqlite"); !ok {
		t.Error("GetModule(memory.sqlite) not found")
	}
	if _, ok := GetModule("memory.redis"); ok {
		t.Error("GetModule(memory.redis) found an unregistered module")
	}
}
