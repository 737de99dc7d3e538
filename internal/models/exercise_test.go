package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_UnmarshalAppliesDefaults(t *testing.T) {
	var s Settings
	err := json.Unmarshal([]byte(`{}`), &s)

	assert.NoError(t, err)
	assert.True(t, s.AllowMultiplePerZone)
	assert.True(t, s.SnapToZone)
	assert.Equal(t, ScoringPerItem, s.ScoringMode)
	assert.False(t, s.ShuffleItems)
	assert.False(t, s.ShowInstantFeedback)
}

func TestSettings_UnmarshalExplicitFalseWins(t *testing.T) {
	var s Settings
	err := json.Unmarshal([]byte(`{"allow_multiple_per_zone": false, "snap_to_zone": false}`), &s)

	assert.NoError(t, err)
	assert.False(t, s.AllowMultiplePerZone)
	assert.False(t, s.SnapToZone)
}

func TestSettings_UnmarshalScoringMode(t *testing.T) {
	var s Settings
	err := json.Unmarshal([]byte(`{"scoring_mode": "none"}`), &s)

	assert.NoError(t, err)
	assert.Equal(t, ScoringNone, s.ScoringMode)

	// Empty string falls back to the default rather than storing nothing.
	err = json.Unmarshal([]byte(`{"scoring_mode": ""}`), &s)
	assert.NoError(t, err)
	assert.Equal(t, ScoringPerItem, s.ScoringMode)
}

func TestNewExercise(t *testing.T) {
	ex := NewExercise()

	assert.Equal(t, SchemaVersion, ex.Version)
	assert.NotNil(t, ex.Zones)
	assert.NotNil(t, ex.Items)
	assert.Empty(t, ex.Zones)
	assert.Empty(t, ex.Items)
}

func TestItem_PointValue(t *testing.T) {
	assert.Equal(t, 1, (&Item{}).PointValue())
	assert.Equal(t, 1, (&Item{Points: -2}).PointValue())
	assert.Equal(t, 5, (&Item{Points: 5}).PointValue())
}

func TestExercise_Lookups(t *testing.T) {
	ex := &Exercise{
		Zones: []Zone{{ID: "z1", Title: "Left"}},
		Items: []Item{{ID: "i1", Text: "One"}},
	}

	assert.NotNil(t, ex.ZoneByID("z1"))
	assert.Nil(t, ex.ZoneByID("z2"))
	assert.NotNil(t, ex.ItemByID("i1"))
	assert.Nil(t, ex.ItemByID("i2"))
	assert.True(t, ex.HasZone("z1"))
	assert.False(t, ex.HasZone(""))
}

func TestScoreResult_IsCorrect(t *testing.T) {
	r := &ScoreResult{CorrectItemIDs: []string{"i1"}}

	assert.True(t, r.IsCorrect("i1"))
	assert.False(t, r.IsCorrect("i2"))
}
