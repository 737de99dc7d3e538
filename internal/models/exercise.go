package models

import "encoding/json"

// SchemaVersion is the only document version currently written. Loading keeps
// an explicit switch so future versions get a migration path instead of a
// silent failure.
const SchemaVersion = 1

type ScoringMode string

const (
	ScoringAllOrNothing ScoringMode = "all_or_nothing"
	ScoringPerItem      ScoringMode = "per_item"
	ScoringNone         ScoringMode = "none"
)

// Exercise is the authored drag-and-drop matching document. It is the unit of
// persistence; placements are session state and never serialized with it.
type Exercise struct {
	Version      int      `json:"version" validate:"required,eq=1"`
	Instructions *string  `json:"instructions,omitempty" validate:"omitempty,max=2000"`
	Settings     Settings `json:"settings"`
	Zones        []Zone   `json:"zones" validate:"dive"`
	Items        []Item   `json:"items" validate:"dive"`
}

// Settings controls playback behavior and styling overrides.
type Settings struct {
	ShuffleItems         bool        `json:"shuffle_items"`
	AllowMultiplePerZone bool        `json:"allow_multiple_per_zone"`
	SnapToZone           bool        `json:"snap_to_zone"`
	ScoringMode          ScoringMode `json:"scoring_mode" validate:"omitempty,scoring_mode"`
	ShowInstantFeedback  bool        `json:"show_instant_feedback"`
	Colors               *ColorSet   `json:"colors,omitempty"`
}

// ColorSet holds optional style overrides for the slide surfaces.
type ColorSet struct {
	Background string `json:"background,omitempty" validate:"omitempty,hex_color"`
	Content    string `json:"content,omitempty" validate:"omitempty,hex_color"`
	Zone       string `json:"zone,omitempty" validate:"omitempty,hex_color"`
}

// Zone is a named drop target.
type Zone struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Categories  []string `json:"categories,omitempty"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hex_color"`
}

// Item is a draggable unit of content. CorrectZoneID names the authoritative
// answer; AltCorrectZoneIDs extends it with acceptable alternates.
type Item struct {
	ID                string   `json:"id" validate:"required"`
	Text              string   `json:"text" validate:"required,min=1,max=500"`
	Color             string   `json:"color,omitempty" validate:"omitempty,hex_color"`
	CorrectZoneID     string   `json:"correct_zone_id,omitempty"`
	AltCorrectZoneIDs []string `json:"alt_correct_zone_ids,omitempty"`
	Points            int      `json:"points,omitempty" validate:"omitempty,min=1"`
	CorrectFeedback   *string  `json:"correct_feedback,omitempty" validate:"omitempty,max=500"`
	IncorrectFeedback *string  `json:"incorrect_feedback,omitempty" validate:"omitempty,max=500"`
}

// PointValue returns the item's score weight, defaulting to 1 when the author
// left it unset.
func (i *Item) PointValue() int {
	if i.Points <= 0 {
		return 1
	}
	return i.Points
}

// DefaultSettings returns the settings a fresh exercise starts with.
func DefaultSettings() Settings {
	return Settings{
		ShuffleItems:         false,
		AllowMultiplePerZone: true,
		SnapToZone:           true,
		ScoringMode:          ScoringPerItem,
		ShowInstantFeedback:  false,
	}
}

// NewExercise returns an empty, current-version exercise document.
func NewExercise() *Exercise {
	return &Exercise{
		Version:  SchemaVersion,
		Settings: DefaultSettings(),
		Zones:    []Zone{},
		Items:    []Item{},
	}
}

// UnmarshalJSON applies the documented defaults (allow_multiple_per_zone and
// snap_to_zone are true, scoring_mode is per_item) to keys absent from older
// or hand-written documents.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type settingsJSON struct {
		ShuffleItems         *bool        `json:"shuffle_items"`
		AllowMultiplePerZone *bool        `json:"allow_multiple_per_zone"`
		SnapToZone           *bool        `json:"snap_to_zone"`
		ScoringMode          *ScoringMode `json:"scoring_mode"`
		ShowInstantFeedback  *bool        `json:"show_instant_feedback"`
		Colors               *ColorSet    `json:"colors"`
	}

	var raw settingsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = DefaultSettings()
	if raw.ShuffleItems != nil {
		s.ShuffleItems = *raw.ShuffleItems
	}
	if raw.AllowMultiplePerZone != nil {
		s.AllowMultiplePerZone = *raw.AllowMultiplePerZone
	}
	if raw.SnapToZone != nil {
		s.SnapToZone = *raw.SnapToZone
	}
	if raw.ScoringMode != nil && *raw.ScoringMode != "" {
		s.ScoringMode = *raw.ScoringMode
	}
	if raw.ShowInstantFeedback != nil {
		s.ShowInstantFeedback = *raw.ShowInstantFeedback
	}
	s.Colors = raw.Colors
	return nil
}

// ZoneByID returns the zone with the given id, or nil.
func (e *Exercise) ZoneByID(id string) *Zone {
	for i := range e.Zones {
		if e.Zones[i].ID == id {
			return &e.Zones[i]
		}
	}
	return nil
}

// ItemByID returns the item with the given id, or nil.
func (e *Exercise) ItemByID(id string) *Item {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return &e.Items[i]
		}
	}
	return nil
}

// HasZone reports whether a zone with the given id exists.
func (e *Exercise) HasZone(id string) bool {
	return e.ZoneByID(id) != nil
}
