package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKindByMagnitude(t *testing.T) {
	testCases := []struct {
		name string
		in   kindInput
		want string
	}{
		{
			name: "max above 100k is a maintenance kit",
			in:   kindInput{Level: 140000, Max: 150000, HasMax: true, Index: 1},
			want: KindMaintenance,
		},
		{
			name: "level above 100k without max is a maintenance kit",
			in:   kindInput{Level: 150000, Index: 5},
			want: KindMaintenance,
		},
		{
			name: "max in drum band is a drum",
			in:   kindInput{Level: 60000, Max: 80000, HasMax: true, Index: 1},
			want: KindDrum,
		},
		{
			name: "ambiguous band with high fill and large max is a drum",
			in:   kindInput{Level: 34000, Max: 40000, HasMax: true, Index: 2},
			want: KindDrum,
		},
		{
			name: "ambiguous band with low fill is a toner",
			in:   kindInput{Level: 8000, Max: 28000, HasMax: true, Index: 2},
			want: KindToner,
		},
		{
			name: "ambiguous band with high fill but small max is a toner",
			in:   kindInput{Level: 20000, Max: 25000, HasMax: true, Index: 2},
			want: KindToner,
		},
		{
			name: "monochrome quirk reclassifies drum-sized row as toner",
			in:   kindInput{Level: 24000, Max: 25000, HasMax: true, Index: 2, FirstIndexIsDrum: true},
			want: KindToner,
		},
		{
			name: "small max is a toner",
			in:   kindInput{Level: 1200, Max: 5000, HasMax: true, Index: 1},
			want: KindToner,
		},
		{
			name: "drum-sized level without max is a drum",
			in:   kindInput{Level: 75000, Index: 1},
			want: KindDrum,
		},
		{
			name: "no evidence defaults to toner",
			in:   kindInput{Level: 80, Index: 3},
			want: KindToner,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyKindByMagnitude(tc.in))
		})
	}
}

func TestComputePercentage(t *testing.T) {
	testCases := []struct {
		name   string
		level  int64
		max    int64
		hasMax bool
		want   int
		wantOK bool
	}{
		{"exact ratio", 2000, 4000, true, 50, true},
		{"rounds to nearest", 333, 1000, true, 33, true},
		{"99 percent collapses to 100", 3970, 4000, true, 100, true},
		{"level above max is invalid", 5000, 4000, true, 0, false},
		{"empty cartridge", 0, 4000, true, 0, true},
		{"bare percentage without max", 42, 0, false, 42, true},
		{"thousandths scale without max", 4200, 0, false, 42, true},
		{"huge level without max is invalid", 50000, 0, false, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := computePercentage(tc.level, tc.max, tc.hasMax)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestColorFromDescription(t *testing.T) {
	testCases := []struct {
		desc string
		want string
	}{
		{"Black Cartridge TN-2420", "black"},
		{"Cartucho Negro", "black"},
		{"Toner Cian", "cyan"},
		{"Cartouche Jaune", "yellow"},
		{"Gelb Toner", "yellow"},
		{"Giallo", "yellow"},
		{"Toner K", "black"},
		{"C Cartridge", "cyan"},
		{"Cartridge", ""}, // single-letter C must not match inside a word
		{"12345", ""},     // numeric descriptions carry no color
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, colorFromDescription(tc.desc))
		})
	}
}
