package store

import (
	"errors"
	"testing"

	"github.com/jmylchreest/cca/internal/colour"
	"github.com/jmylchreest/cca/pkg/sampler"
)

func TestApplyPartialUpdates(t *testing.T) {
	white := colour.RGB{R: 255, G: 255, B: 255}
	black := colour.RGB{R: 0, G: 0, B: 0}
	red := colour.RGB{R: 255, G: 0, B: 0}

	tests := []struct {
		name   string
		start  State
		snap   sampler.Snapshot
		wantFg *colour.RGB
		wantBg *colour.RGB
	}{
		{
			name:   "foreground only on fresh state",
			start:  State{},
			snap:   sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")},
			wantFg: &white,
			wantBg: nil,
		},
		{
			name:   "background only keeps foreground",
			start:  State{Foreground: &white},
			snap:   sampler.Snapshot{Background: sampler.HexValue("#000000")},
			wantFg: &white,
			wantBg: &black,
		},
		{
			name:  "both sides replaced wholesale",
			start: State{Foreground: &white, Background: &black},
			snap: sampler.Snapshot{
				Foreground: sampler.HexValue("#FF0000"),
				Background: sampler.HexValue("#FFFFFF"),
			},
			wantFg: &red,
			wantBg: &white,
		},
		{
			name:   "empty snapshot is a no-op for colours",
			start:  State{Foreground: &white, Background: &black},
			snap:   sampler.Snapshot{},
			wantFg: &white,
			wantBg: &black,
		},
		{
			name:   "rgb tuple encoding accepted",
			start:  State{},
			snap:   sampler.Snapshot{Foreground: sampler.RGBValue(255, 0, 0)},
			wantFg: &red,
			wantBg: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.Apply(tt.snap)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !rgbEqual(got.Foreground, tt.wantFg) {
				t.Errorf("Foreground = %v, want %v", got.Foreground, tt.wantFg)
			}
			if !rgbEqual(got.Background, tt.wantBg) {
				t.Errorf("Background = %v, want %v", got.Background, tt.wantBg)
			}
		})
	}
}

func TestApplyContinueMode(t *testing.T) {
	s, err := State{}.Apply(sampler.Snapshot{ContinueMode: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !s.ContinueMode {
		t.Error("ContinueMode not carried over")
	}

	s, err = s.Apply(sampler.Snapshot{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.ContinueMode {
		t.Error("ContinueMode not cleared by snapshot with mode off")
	}
}

func TestApplyInvalidHexKeepsPrior(t *testing.T) {
	white := colour.RGB{R: 255, G: 255, B: 255}
	start := State{Foreground: &white}

	got, err := start.Apply(sampler.Snapshot{Foreground: sampler.HexValue("#XYZ123")})
	if err == nil {
		t.Fatal("Apply expected error for invalid hex")
	}
	if !errors.Is(err, colour.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
	if !rgbEqual(got.Foreground, &white) {
		t.Errorf("Foreground = %v, want prior value kept", got.Foreground)
	}
}

func TestApplyInvalidSideDoesNotBlockValidSide(t *testing.T) {
	black := colour.RGB{R: 0, G: 0, B: 0}

	got, err := State{}.Apply(sampler.Snapshot{
		Foreground: sampler.HexValue("bogus"),
		Background: sampler.HexValue("#000000"),
	})
	if err == nil {
		t.Fatal("Apply expected error for invalid foreground")
	}
	if got.Foreground != nil {
		t.Errorf("Foreground = %v, want nil", got.Foreground)
	}
	if !rgbEqual(got.Background, &black) {
		t.Errorf("Background = %v, want %v", got.Background, black)
	}
}

func TestApplyEmptyColourValue(t *testing.T) {
	_, err := State{}.Apply(sampler.Snapshot{Foreground: &sampler.ColourValue{}})
	if !errors.Is(err, colour.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestApplyIdempotent(t *testing.T) {
	snap := sampler.Snapshot{
		Foreground:   sampler.HexValue("#FFFFFF"),
		Background:   sampler.HexValue("#000000"),
		ContinueMode: true,
	}

	once, err := State{}.Apply(snap)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	twice, err := once.Apply(snap)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !once.Equal(twice) {
		t.Errorf("second application changed state: %+v vs %+v", once, twice)
	}
}

func TestEqual(t *testing.T) {
	white := colour.RGB{R: 255, G: 255, B: 255}
	otherWhite := colour.RGB{R: 255, G: 255, B: 255}
	black := colour.RGB{R: 0, G: 0, B: 0}

	tests := []struct {
		name string
		a    State
		b    State
		want bool
	}{
		{name: "both empty", a: State{}, b: State{}, want: true},
		{name: "same value different pointers", a: State{Foreground: &white}, b: State{Foreground: &otherWhite}, want: true},
		{name: "nil vs set", a: State{}, b: State{Foreground: &white}, want: false},
		{name: "different colours", a: State{Foreground: &white}, b: State{Foreground: &black}, want: false},
		{name: "different mode", a: State{ContinueMode: true}, b: State{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}
