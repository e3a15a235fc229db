package interact

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// countingRegistrar records how many times a script was registered.
type countingRegistrar struct {
	calls atomic.Int32
	last  atomic.Value
}

func (c *countingRegistrar) RegisterScript(name, source string) {
	c.calls.Add(1)
	c.last.Store(name)
}

// ---------------------------------------------------------------------------
// TestGuard_EnsureInstalled - One-way transition
// ---------------------------------------------------------------------------

func TestGuard_EnsureInstalled(t *testing.T) {
	t.Parallel()

	var g Guard
	reg := &countingRegistrar{}

	if g.Installed() {
		t.Fatal("zero Guard should be uninstalled")
	}

	if !g.EnsureInstalled(reg, "copy-code", "js") {
		t.Error("first call should perform the registration")
	}
	for i := 0; i < 5; i++ {
		if g.EnsureInstalled(reg, "copy-code", "js") {
			t.Errorf("call %d re-registered the handler", i+2)
		}
	}

	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}
	if got := reg.last.Load(); got != "copy-code" {
		t.Errorf("registered name = %v, want copy-code", got)
	}
	if !g.Installed() {
		t.Error("guard should report installed")
	}
}

func TestGuard_NilRegistrarSkips(t *testing.T) {
	t.Parallel()

	var g Guard
	for i := 0; i < 3; i++ {
		if g.EnsureInstalled(nil, "copy-code", "js") {
			t.Fatal("nil registrar must not install")
		}
	}
	if g.Installed() {
		t.Fatal("guard should stay uninstalled without a registrar")
	}

	reg := &countingRegistrar{}
	if !g.EnsureInstalled(reg, "copy-code", "js") {
		t.Error("first interactive call should still install")
	}
	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}
}

func TestGuard_ConcurrentFirstCalls(t *testing.T) {
	t.Parallel()

	const goroutines = 64

	var g Guard
	reg := &countingRegistrar{}
	var winners atomic.Int32
	var start, done sync.WaitGroup
	start.Add(1)

	for i := 0; i < goroutines; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			if g.EnsureInstalled(reg, "copy-code", "js") {
				winners.Add(1)
			}
		}()
	}
	start.Done()
	done.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("winners = %d, want 1", got)
	}
	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// TestScriptSet - Registrar used by interactive hosts
// ---------------------------------------------------------------------------

func TestScriptSet(t *testing.T) {
	t.Parallel()

	s := NewScriptSet()
	s.RegisterScript("copy-code", "console.log('a')")
	s.RegisterScript("other", "let x = '</script>'")
	s.RegisterScript("copy-code", "ignored")

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	names := s.Names()
	if names[0] != "copy-code" || names[1] != "other" {
		t.Errorf("Names() = %v, want registration order", names)
	}

	tags := s.Tags()
	if strings.Count(tags, "<script") != 2 {
		t.Errorf("Tags() should emit two scripts: %q", tags)
	}
	if strings.Contains(tags, "ignored") {
		t.Error("duplicate registration should be ignored")
	}
	if strings.Contains(tags, "'</script>'") {
		t.Error("script source must not close the script element")
	}
	if !strings.Contains(tags, `'<\/script>'`) {
		t.Errorf("escaped closing sequence missing: %q", tags)
	}
}

func TestScriptSet_ConcurrentRegister(t *testing.T) {
	t.Parallel()

	s := NewScriptSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RegisterScript("copy-code", "js")
			_ = s.Tags()
		}()
	}
	wg.Wait()

	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestEnsureInstalled_ProcessGuardIgnoresStaticContext(t *testing.T) {
	t.Parallel()

	if EnsureInstalled(nil, "copy-code", "js") {
		t.Error("static context must not install the process guard")
	}
}

func TestEnsureInstalled_ProcessGuardOnce(t *testing.T) {
	process.installed.Store(false)
	t.Cleanup(func() { process.installed.Store(false) })

	reg := &countingRegistrar{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EnsureInstalled(reg, "copy-code", "js")
		}()
	}
	wg.Wait()
	EnsureInstalled(reg, "copy-code", "js")

	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}
}
