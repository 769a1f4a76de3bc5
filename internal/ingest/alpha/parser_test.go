package alpha

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParse_Sessions checks every exercise block of a two-session export:
// names with and without equipment, modifiers after the target reps and
// warm-ups listed in the header.
func TestParse_Sessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	legs := sessions[0]
	assert.Equal(t, "Legs · Day 2 · Week 4 · Push-Pull-Legs", legs.Name)
	assert.Equal(t, time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC), legs.Date)
	assert.Equal(t, "1:02 hr", legs.Duration)
	assert.Equal(t, 22, legs.SetCount())

	want := []struct {
		name       string
		equipment  string
		targetReps int
		sets       int
		warmups    int
	}{
		{"Hack Squats", "Machine", 8, 5, 2},
		{"Sumo Squats", "Smith machine", 10, 3, 1},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4, 1},
		{"Reverse Lunges", "Dumbbells", 10, 3, 0},
		{"Standing Calf Raises", "Machine", 12, 4, 1},
		{"Hanging Leg Raises", "Bodyweight", 12, 3, 0},
	}
	require.Len(t, legs.Exercises, len(want))
	for i, w := range want {
		ex := legs.Exercises[i]
		t.Run(w.name, func(t *testing.T) {
			assert.Equal(t, i+1, ex.Number)
			assert.Equal(t, w.name, ex.Name)
			assert.Equal(t, w.equipment, ex.Equipment)
			assert.Equal(t, w.targetReps, ex.TargetReps)
			assert.Len(t, ex.Sets, w.sets)

			warmups := 0
			for _, s := range ex.Sets {
				if s.IsWarmup {
					warmups++
				}
			}
			assert.Equal(t, w.warmups, warmups)
		})
	}

	calf := legs.Exercises[4].Sets
	assert.Equal(t, 157.5, calf[1].WeightKg)
	assert.Equal(t, 1.0, calf[1].RIR)
	assert.Zero(t, calf[3].RIR)

	push := sessions[1]
	assert.Equal(t, "Push · Day 1 · Week 4 · Push-Pull-Legs", push.Name)
	require.Len(t, push.Exercises, 1)
	assert.Len(t, push.Exercises[0].Sets, 6)
}

// TestParse_Empty returns no sessions for an empty export.
func TestParse_Empty(t *testing.T) {
	sessions, err := Parse(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

// TestParse_Malformed rejects lines that appear outside their parent block.
func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exercise before session", `"1. Squat · Barbell · 5 reps"`},
		{"set before exercise", "\"Legs\";\"2026-02-19 4:54 h\";\"1:00 hr\"\n1;100;5;1"},
		{"invalid date", `"Legs";"2026-13-45 4:54 h";"1:00 hr"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

// TestParse_IgnoresNotes skips lines that match no known shape.
func TestParse_IgnoresNotes(t *testing.T) {
	input := `"Pull";"2026-03-01 18:30 h";"45 min"
"1. Chin-ups · 8 reps"
felt strong today
#;KG;REPS;RIR
1;+10;8;2
`
	sessions, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Exercises, 1)

	ex := sessions[0].Exercises[0]
	assert.Equal(t, "Chin-ups", ex.Name)
	assert.Empty(t, ex.Equipment)
	require.Len(t, ex.Sets, 1)
	assert.True(t, ex.Sets[0].IsBodyweightPlus)
	assert.Equal(t, 10.0, ex.Sets[0].WeightKg)
	assert.Equal(t, 18, sessions[0].Date.Hour())
}

// TestParseWeight covers decimal commas and the bodyweight-plus prefix.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		plus   bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" +2,5 ", 2.5, true},
		{"", 0, false},
	}
	for _, tt := range tests {
		weight, plus := parseWeight(tt.in)
		assert.Equal(t, tt.weight, weight, "parseWeight(%q)", tt.in)
		assert.Equal(t, tt.plus, plus, "parseWeight(%q)", tt.in)
	}
	assert.Equal(t, 0.5, parseEuropeanFloat("0,5"))
}

// TestParseWarmups splits the header's warm-up list on <br>.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>garbage<br>WU2 · +0 kg · 7 reps")
	require.Len(t, sets, 2)

	assert.Equal(t, 1, sets[0].Number)
	assert.Equal(t, 37.5, sets[0].WeightKg)
	assert.Equal(t, 9, sets[0].Reps)
	assert.True(t, sets[0].IsWarmup)
	assert.False(t, sets[0].IsBodyweightPlus)

	assert.Equal(t, 2, sets[1].Number)
	assert.True(t, sets[1].IsBodyweightPlus)
	assert.Zero(t, sets[1].WeightKg)
}
