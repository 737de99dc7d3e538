package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/courseforge/dragdrop-service/internal/exercise"
	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
)

// importExportService moves draggable items in and out of an exercise as
// spreadsheet rows. Zone references in import files use zone titles, not ids;
// rows naming an unknown zone are rejected individually without failing the
// whole import.
type importExportService struct {
	exercises ExerciseService
	logger    *slog.Logger
}

func NewImportExportService(exercises ExerciseService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		exercises: exercises,
		logger:    logger,
	}
}

// documentWriter is the autosave path structural edits use. Imported items
// persist through it so a batch of valid rows lands even when the document as
// a whole is not yet savable, the same as adding the items by hand.
type documentWriter interface {
	persist(ctx context.Context, loc store.Locator, ex *models.Exercise) (*SaveResponse, error)
}

func (s *importExportService) saveImported(ctx context.Context, loc store.Locator, ex *models.Exercise) (*SaveResponse, error) {
	if writer, ok := s.exercises.(documentWriter); ok {
		return writer.persist(ctx, loc, ex)
	}
	return s.exercises.Save(ctx, loc, ex)
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportItemsFromFile(ctx context.Context, loc store.Locator, file multipart.File, filename string) (*ImportResponse, error) {
	s.logger.Info("starting item import", "filename", filename, "key", loc.Key())

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return s.ImportItemsFromCSV(ctx, loc, file)
	case ".xlsx", ".xls":
		return s.ImportItemsFromExcel(ctx, loc, file)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportItemsFromCSV(ctx context.Context, loc store.Locator, reader io.Reader) (*ImportResponse, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return s.importRows(ctx, loc, records)
}

func (s *importExportService) ImportItemsFromExcel(ctx context.Context, loc store.Locator, reader io.Reader) (*ImportResponse, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return s.importRows(ctx, loc, rows)
}

// importRows parses header plus data rows, appends the valid items to the
// exercise and saves it once at the end.
func (s *importExportService) importRows(ctx context.Context, loc store.Locator, rows [][]string) (*ImportResponse, error) {
	start := time.Now()

	if len(rows) < 2 {
		return nil, NewValidationError("file", "file must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := headerMap["text"]; !ok {
		return nil, NewValidationError("headers", "missing required column: text", "text")
	}

	current, err := s.exercises.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	ex := current.Exercise
	zonesByTitle := zoneTitleIndex(ex)

	summary := &models.ImportSummary{
		Status:    models.ImportProcessing,
		TotalRows: len(rows) - 1,
	}

	var items []models.Item
	for rowIndex, row := range rows[1:] {
		item, rowErrors := s.parseItemRow(row, headerMap, zonesByTitle, rowIndex+2)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
		} else {
			items = append(items, item)
			summary.SuccessCount++
		}
		summary.ProcessedRows++
	}

	var degraded bool
	if len(items) > 0 {
		for i := range items {
			created := exercise.AddItem(ex, items[i])
			summary.CreatedItems = append(summary.CreatedItems, created.ID)
		}
		saved, err := s.saveImported(ctx, loc, ex)
		if err != nil {
			return nil, fmt.Errorf("failed to save imported items: %w", err)
		}
		ex = saved.Exercise
		degraded = saved.Degraded
	}

	summary.ProcessingTime = time.Since(start)
	summary.Status = models.ImportCompleted
	if summary.SuccessCount == 0 {
		summary.Status = models.ImportFailed
	}

	s.logger.Info("item import completed",
		"key", loc.Key(),
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return &ImportResponse{
		Summary:  summary,
		Exercise: ex,
		Degraded: degraded,
	}, nil
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportExercise(ctx context.Context, loc store.Locator, format string) (*ExportResponse, error) {
	current, err := s.exercises.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	ex := current.Exercise

	base := "dragdrop-exercise"
	if !loc.IsSandbox() {
		base = fmt.Sprintf("dragdrop-%s-%s", loc.CourseID, loc.SlideID)
	}

	switch strings.ToLower(format) {
	case "csv":
		data, err := s.exportCSV(ex)
		if err != nil {
			return nil, err
		}
		return &ExportResponse{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case "xlsx":
		data, err := s.exportExcel(ex)
		if err != nil {
			return nil, err
		}
		return &ExportResponse{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case "json":
		data, err := store.EncodeDocument(ex)
		if err != nil {
			return nil, err
		}
		return &ExportResponse{Filename: base + ".json", ContentType: "application/json", Data: data}, nil
	default:
		return nil, NewValidationError("format", "unsupported export format", format)
	}
}

var exportHeaders = []string{
	"Text", "Correct Zone", "Alternate Zones", "Points", "Correct Feedback", "Incorrect Feedback",
}

func (s *importExportService) exportCSV(ex *models.Exercise) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range ex.Items {
		if err := writer.Write(itemToRow(ex, &ex.Items[i])); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) exportExcel(ex *models.Exercise) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Items"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex := range ex.Items {
		row := itemToRow(ex, &ex.Items[rowIndex])
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== HELPER FUNCTIONS =====

func (s *importExportService) parseItemRow(row []string, headerMap map[string]int, zonesByTitle map[string]string, rowNum int) (models.Item, []models.ImportValidationError) {
	var rowErrors []models.ImportValidationError

	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	text := getColumn("text")
	if text == "" {
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row: rowNum, Column: "text", Message: "required field",
		})
		return models.Item{}, rowErrors
	}

	item := models.Item{Text: text, Color: getColumn("color")}

	if zoneTitle := getColumn("correct_zone"); zoneTitle != "" {
		zoneID, ok := zonesByTitle[strings.ToLower(zoneTitle)]
		if !ok {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Column: "correct_zone", Message: "no zone with this title exists", Value: zoneTitle,
			})
		} else {
			item.CorrectZoneID = zoneID
		}
	}

	if altTitles := getColumn("alt_correct_zones"); altTitles != "" {
		for _, title := range strings.Split(altTitles, ";") {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			zoneID, ok := zonesByTitle[strings.ToLower(title)]
			if !ok {
				rowErrors = append(rowErrors, models.ImportValidationError{
					Row: rowNum, Column: "alt_correct_zones", Message: "no zone with this title exists", Value: title,
				})
				continue
			}
			item.AltCorrectZoneIDs = append(item.AltCorrectZoneIDs, zoneID)
		}
	}

	if pointsStr := getColumn("points"); pointsStr != "" {
		points, err := strconv.Atoi(pointsStr)
		if err != nil || points < 1 {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Column: "points", Message: "must be a positive integer", Value: pointsStr,
			})
		} else {
			item.Points = points
		}
	}

	if fb := getColumn("correct_feedback"); fb != "" {
		item.CorrectFeedback = &fb
	}
	if fb := getColumn("incorrect_feedback"); fb != "" {
		item.IncorrectFeedback = &fb
	}

	if len(rowErrors) > 0 {
		return models.Item{}, rowErrors
	}
	return item, nil
}

func itemToRow(ex *models.Exercise, item *models.Item) []string {
	row := make([]string, len(exportHeaders))
	row[0] = item.Text
	if zone := ex.ZoneByID(item.CorrectZoneID); zone != nil {
		row[1] = zone.Title
	}

	var altTitles []string
	for _, altID := range item.AltCorrectZoneIDs {
		if zone := ex.ZoneByID(altID); zone != nil {
			altTitles = append(altTitles, zone.Title)
		}
	}
	row[2] = strings.Join(altTitles, "; ")

	row[3] = strconv.Itoa(item.PointValue())
	if item.CorrectFeedback != nil {
		row[4] = *item.CorrectFeedback
	}
	if item.IncorrectFeedback != nil {
		row[5] = *item.IncorrectFeedback
	}
	return row
}

func zoneTitleIndex(ex *models.Exercise) map[string]string {
	index := make(map[string]string, len(ex.Zones))
	for i := range ex.Zones {
		index[strings.ToLower(strings.TrimSpace(ex.Zones[i].Title))] = ex.Zones[i].ID
	}
	return index
}
