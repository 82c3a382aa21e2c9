package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestMutateBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, _ := NewNetwork(rng, DefaultConfig().Topology())
	before := nn.Flat()

	const magnitude = 0.1
	nn.Mutate(rng, magnitude)
	after := nn.Flat()

	changed := 0
	for i := range before {
		d := math.Abs(after[i] - before[i])
		if d > magnitude {
			t.Fatalf("weight %d moved by %v, more than %v", i, d, magnitude)
		}
		if d > 0 {
			changed++
		}
	}
	if changed != len(before) {
		t.Errorf("%d of %d weights changed, want all", changed, len(before))
	}
}

func TestMutateZeroMagnitude(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, _ := NewNetwork(rng, []int{3, 2})
	before := nn.Flat()
	nn.Mutate(rng, 0)
	if !equalFlat(before, nn.Flat()) {
		t.Error("zero-magnitude mutation changed weights")
	}
}

func TestInheritStaysBetweenParents(t *testing.T) {
	for _, mode := range []CrossoverMode{CrossoverBlend, CrossoverMean, CrossoverUniform} {
		t.Run(string(mode), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			a, _ := NewNetwork(rng, DefaultConfig().Topology())
			b, _ := NewNetwork(rng, DefaultConfig().Topology())

			child, err := a.Inherit(b, rng, mode)
			if err != nil {
				t.Fatalf("Inherit: %v", err)
			}

			fa, fb, fc := a.Flat(), b.Flat(), child.Flat()
			for i := range fc {
				lo, hi := math.Min(fa[i], fb[i]), math.Max(fa[i], fb[i])
				if fc[i] < lo-1e-12 || fc[i] > hi+1e-12 {
					t.Fatalf("weight %d = %v outside parents [%v, %v]", i, fc[i], lo, hi)
				}
			}
		})
	}
}

func TestInheritMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a, _ := NewNetwork(rng, []int{2, 3})
	b, _ := NewNetwork(rng, []int{2, 3})

	child, err := a.Inherit(b, rng, CrossoverMean)
	if err != nil {
		t.Fatal(err)
	}
	fa, fb, fc := a.Flat(), b.Flat(), child.Flat()
	for i := range fc {
		if want := (fa[i] + fb[i]) / 2; math.Abs(fc[i]-want) > 1e-12 {
			t.Errorf("weight %d = %v, want %v", i, fc[i], want)
		}
	}
}

func TestInheritTopologyMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a, _ := NewNetwork(rng, []int{NumInputs, 4, NumOutputs})
	b, _ := NewNetwork(rng, []int{NumInputs, 5, NumOutputs})

	if _, err := a.Inherit(b, rng, CrossoverBlend); !errors.Is(err, ErrTopologyMismatch) {
		t.Errorf("err = %v, want ErrTopologyMismatch", err)
	}
	if _, err := a.Inherit(nil, rng, CrossoverBlend); !errors.Is(err, ErrTopologyMismatch) {
		t.Errorf("nil mate: err = %v, want ErrTopologyMismatch", err)
	}
}

func TestOffspringWithinMutationRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := DefaultConfig()
	a, _ := NewNetwork(rng, cfg.Topology())
	b, _ := NewNetwork(rng, cfg.Topology())

	child, err := Offspring(a, b, rng, cfg)
	if err != nil {
		t.Fatal(err)
	}
	fa, fb, fc := a.Flat(), b.Flat(), child.Flat()
	m := cfg.MutationMagnitude
	for i := range fc {
		lo, hi := math.Min(fa[i], fb[i])-m, math.Max(fa[i], fb[i])+m
		if fc[i] < lo || fc[i] > hi {
			t.Fatalf("weight %d = %v outside [%v, %v]", i, fc[i], lo, hi)
		}
	}

	// Parents are untouched.
	if equalFlat(fa, fc) || equalFlat(fb, fc) {
		t.Error("child is identical to a parent")
	}
}

func TestOffspringWithoutMateClones(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := DefaultConfig()
	cfg.MutationMagnitude = 0
	a, _ := NewNetwork(rng, cfg.Topology())

	child, err := Offspring(a, nil, rng, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !equalFlat(a.Flat(), child.Flat()) {
		t.Error("unmutated clone differs from parent")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no hidden layers", func(c *Config) { c.HiddenLayers = nil }, false},
		{"zero hidden", func(c *Config) { c.HiddenLayers = []int{0} }, true},
		{"negative magnitude", func(c *Config) { c.MutationMagnitude = -1 }, true},
		{"unknown crossover", func(c *Config) { c.Crossover = "splice" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
