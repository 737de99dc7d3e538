package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courseforge/dragdrop-service/internal/store"
)

func newImportExportFixture() (ImportExportService, *exerciseServiceFixture) {
	f := newExerciseServiceFixture()
	return NewImportExportService(f.service, slog.Default()), f
}

func seedZones(t *testing.T, f *exerciseServiceFixture, loc store.Locator) {
	t.Helper()
	_, err := f.service.AddZone(context.Background(), loc, ZoneRequest{Title: "Fruits"})
	assert.NoError(t, err)
	_, err = f.service.AddZone(context.Background(), loc, ZoneRequest{Title: "Vegetables"})
	assert.NoError(t, err)
}

func TestImportItemsFromCSV(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	input := strings.Join([]string{
		"text,correct_zone,alt_correct_zones,points",
		"Apple,Fruits,,2",
		"Carrot,Vegetables,Fruits,",
		"Tomato,fruits; vegetables,,",
	}, "\n")

	resp, err := svc.ImportItemsFromCSV(context.Background(), loc, strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Summary.TotalRows)
	assert.Equal(t, 2, resp.Summary.SuccessCount)
	// "fruits; vegetables" is not a zone title; the row is rejected, the
	// rest of the import goes through.
	assert.Equal(t, 1, resp.Summary.ErrorCount)
	if assert.Len(t, resp.Summary.Errors, 1) {
		assert.Equal(t, 4, resp.Summary.Errors[0].Row)
		assert.Equal(t, "correct_zone", resp.Summary.Errors[0].Column)
	}
	assert.Len(t, resp.Summary.CreatedItems, 2)
	assert.Len(t, resp.Exercise.Items, 2)

	apple := resp.Exercise.Items[0]
	assert.Equal(t, "Apple", apple.Text)
	assert.Equal(t, 2, apple.Points)
	carrot := resp.Exercise.Items[1]
	assert.Len(t, carrot.AltCorrectZoneIDs, 1)
}

func TestImportItemsFromCSV_ZoneTitlesMatchCaseInsensitive(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	input := "text,correct_zone\nApple,FRUITS\n"

	resp, err := svc.ImportItemsFromCSV(context.Background(), loc, strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.SuccessCount)
}

func TestImportItemsFromCSV_TextOnlyRowsPersist(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	// correct_zone is an optional column; rows without one import like items
	// added by hand, even though the document is not yet savable.
	resp, err := svc.ImportItemsFromCSV(context.Background(), loc, strings.NewReader("text\nApple\n"))

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.SuccessCount)
	assert.Equal(t, 0, resp.Summary.ErrorCount)
	if assert.Len(t, resp.Exercise.Items, 1) {
		assert.Equal(t, "Apple", resp.Exercise.Items[0].Text)
		assert.Empty(t, resp.Exercise.Items[0].CorrectZoneID)
	}

	// The imported item survives a reload; the missing answer shows up as an
	// authoring issue instead of failing the batch.
	loaded, err := f.service.Get(context.Background(), loc)
	assert.NoError(t, err)
	assert.Len(t, loaded.Exercise.Items, 1)
	assert.False(t, loaded.Savable)
}

func TestImportItemsFromCSV_MissingTextColumn(t *testing.T) {
	svc, _ := newImportExportFixture()

	_, err := svc.ImportItemsFromCSV(context.Background(), store.Locator{}, strings.NewReader("title\nApple\n"))

	assert.True(t, IsValidation(err))
}

func TestImportItemsFromCSV_HeaderOnly(t *testing.T) {
	svc, _ := newImportExportFixture()

	_, err := svc.ImportItemsFromCSV(context.Background(), store.Locator{}, strings.NewReader("text\n"))

	assert.True(t, IsValidation(err))
}

func TestImportItemsFromCSV_BadPoints(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	input := "text,correct_zone,points\nApple,Fruits,zero\n"

	resp, err := svc.ImportItemsFromCSV(context.Background(), loc, strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.ErrorCount)
	if assert.Len(t, resp.Summary.Errors, 1) {
		assert.Equal(t, "points", resp.Summary.Errors[0].Column)
	}
}

func TestExportExercise_CSVRoundTrip(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	input := "text,correct_zone,points,correct_feedback\nApple,Fruits,2,Well done\n"
	_, err := svc.ImportItemsFromCSV(context.Background(), loc, strings.NewReader(input))
	assert.NoError(t, err)

	resp, err := svc.ExportExercise(context.Background(), loc, "csv")
	assert.NoError(t, err)
	assert.Equal(t, "text/csv", resp.ContentType)
	assert.Equal(t, "dragdrop-c1-s1.csv", resp.Filename)

	records, err := csv.NewReader(bytes.NewReader(resp.Data)).ReadAll()
	assert.NoError(t, err)
	if assert.Len(t, records, 2) {
		assert.Equal(t, "Apple", records[1][0])
		assert.Equal(t, "Fruits", records[1][1])
		assert.Equal(t, "2", records[1][3])
		assert.Equal(t, "Well done", records[1][4])
	}
}

func TestExportExercise_JSON(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	resp, err := svc.ExportExercise(context.Background(), loc, "json")

	assert.NoError(t, err)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Contains(t, string(resp.Data), `"version":1`)
}

func TestExportExercise_Excel(t *testing.T) {
	svc, f := newImportExportFixture()
	loc := store.Locator{CourseID: "c1", SlideID: "s1"}
	seedZones(t, f, loc)

	resp, err := svc.ExportExercise(context.Background(), loc, "xlsx")

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Data)
	assert.Equal(t, "dragdrop-c1-s1.xlsx", resp.Filename)
}

func TestExportExercise_UnsupportedFormat(t *testing.T) {
	svc, _ := newImportExportFixture()

	_, err := svc.ExportExercise(context.Background(), store.Locator{}, "pdf")

	assert.True(t, IsValidation(err))
}
