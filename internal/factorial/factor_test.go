package factorial

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFactor(t *testing.T) {
	tests := []struct {
		name string
		want Factor
	}{
		{"large1", Large1},
		{"copy-on-write", CopyOnWrite},
		{"copy_on_write", CopyOnWrite},
		{" AVX ", AVX},
		{"gcc", Optimize},
		{"amalgamation", Amalgamation},
		{"amalgamation-build", Amalgamation},
	}
	for _, tt := range tests {
		got, err := ParseFactor(tt.name)
		if err != nil {
			t.Errorf("ParseFactor(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFactor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseFactor("turbo"); !errors.Is(err, ErrUnknownFactor) {
		t.Errorf("ParseFactor(turbo) error = %v, want ErrUnknownFactor", err)
	}
}

func TestFactorNamesRoundTrip(t *testing.T) {
	for _, f := range AllFactors() {
		got, err := ParseFactor(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFactor(%q) = %v, %v", f.String(), got, err)
		}
	}
	if got := Factor(-1).String(); got != "factor(-1)" {
		t.Errorf("String() of invalid factor = %q", got)
	}
}

func TestParsePins(t *testing.T) {
	p, err := ParsePins([]string{"large1=true", "dense2=false", "gcc=1"})
	if err != nil {
		t.Fatalf("ParsePins error: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if diff := cmp.Diff([]Factor{Large1, Dense2, Optimize}, p.Pinned()); diff != "" {
		t.Errorf("Pinned() mismatch (-want +got):\n%s", diff)
	}
	if v, ok := p.Value(Dense2); !ok || v {
		t.Errorf("Value(dense2) = %v, %v; want false, true", v, ok)
	}
	if got := p.String(); got != "large1=true,dense2=false,optimize=true" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"large1", "large1=maybe", "turbo=true"} {
		if _, err := ParsePins([]string{bad}); err == nil {
			t.Errorf("ParsePins(%q) succeeded, want error", bad)
		}
	}
}

func TestPinsFromMap(t *testing.T) {
	p, err := PinsFromMap(map[string]bool{"avx": false, "optimize": true})
	if err != nil {
		t.Fatalf("PinsFromMap error: %v", err)
	}
	if !p.IsPinned(AVX) || !p.IsPinned(Optimize) || p.IsPinned(Large1) {
		t.Errorf("unexpected pins: %s", p)
	}
}

func TestAssignmentFields(t *testing.T) {
	a := Assignment{}.With(Large1, true).With(AVX, true)
	want := []string{"true", "false", "false", "false", "false", "false", "false", "false", "true"}
	if diff := cmp.Diff(want, a.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
	if len(Names()) != NumFactors {
		t.Errorf("Names() has %d entries, want %d", len(Names()), NumFactors)
	}
}

func TestPinsRestrict(t *testing.T) {
	p := DefaultPins().Restrict([]Factor{Large1, Dense1, AVX})
	if got := p.Pinned(); len(got) != 1 || got[0] != Large1 {
		t.Errorf("Restrict kept %v, want [large1]", got)
	}
	if v, ok := p.Value(Large1); !ok || !v {
		t.Errorf("large1 pin lost its value")
	}
}

func TestPinUndefinedFactorPanics(t *testing.T) {
	var p Pins
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Pin(Factor(42)) did not panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "undefined factor 42") {
			t.Errorf("unexpected panic value %v", r)
		}
	}()
	if p.IsPinned(Factor(42)) {
		t.Error("undefined factor reported as pinned")
	}
	if _, ok := p.Value(Factor(-1)); ok {
		t.Error("undefined factor reported a value")
	}
	p.Pin(Factor(42), true)
}
