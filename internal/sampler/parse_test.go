package sampler

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec    string
		kind    Kind
		variant Variant
		min     float64
		max     float64
		str     string
	}{
		{"1:5", Integer, VariantDiscrete, 1, 5, "1:5"},
		{"1,2,3", Integer, VariantDiscrete, 1, 3, "1,2,3"},
		{"9, 4 ,1", Integer, VariantDiscrete, 1, 9, "9,4,1"},
		{"7", Integer, VariantDiscrete, 7, 7, "7"},
		{"7:7", Integer, VariantDiscrete, 7, 7, "7:7"},
		{"0.01:0.5", Real, VariantContinuous, 0.01, 0.5, "0.01:0.5"},
		{"0.1,0.2", Real, VariantDiscrete, 0.1, 0.2, "0.1,0.2"},
		{"0.5", Real, VariantDiscrete, 0.5, 0.5, "0.5"},
		{"1:4294967295", Integer, VariantDiscrete, 1, 4294967295, "1:4294967295"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := Parse(tt.spec, tt.kind)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.spec, err)
			}
			if s.Variant() != tt.variant {
				t.Errorf("variant = %v, want %v", s.Variant(), tt.variant)
			}
			if s.Min() != tt.min || s.Max() != tt.max {
				t.Errorf("bounds = [%v, %v], want [%v, %v]", s.Min(), s.Max(), tt.min, tt.max)
			}
			if s.String() != tt.str {
				t.Errorf("String() = %q, want %q", s.String(), tt.str)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		spec  string
		kind  Kind
		want  error
		token string
	}{
		{"1:2,3", Integer, ErrMixedSeparators, ""},
		{"1:2:3", Integer, ErrMalformedRange, ""},
		{"5:1", Integer, ErrEmptyRange, ""},
		{"0.5:0.1", Real, ErrEmptyRange, ""},
		{"1,x,3", Integer, ErrInvalidNumber, "x"},
		{"1.5", Integer, ErrInvalidNumber, "1.5"},
		{"", Integer, ErrInvalidNumber, ""},
		{"1,,2", Integer, ErrInvalidNumber, ""},
		{"2:", Integer, ErrInvalidNumber, ""},
		{"NaN", Real, ErrInvalidNumber, "NaN"},
		{"0:Inf", Real, ErrInvalidNumber, "Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := Parse(tt.spec, tt.kind)
			if err == nil {
				t.Fatalf("Parse(%q) = %v, want error", tt.spec, s)
			}
			if s != nil {
				t.Errorf("Parse(%q) returned non-nil sampler with error", tt.spec)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FormatError", err)
			}
			if fe.Spec != tt.spec {
				t.Errorf("FormatError.Spec = %q, want %q", fe.Spec, tt.spec)
			}
			if fe.Token != tt.token {
				t.Errorf("FormatError.Token = %q, want %q", fe.Token, tt.token)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustParse did not panic on a bad spec")
		}
	}()
	MustParse("1:2,3", Integer)
}
