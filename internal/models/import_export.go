package models

import "time"

type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportValidationError describes one rejected row from an item import file.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportSummary struct {
	Status         ImportStatus            `json:"status"`
	TotalRows      int                     `json:"total_rows"`
	ProcessedRows  int                     `json:"processed_rows"`
	SuccessCount   int                     `json:"success_count"`
	ErrorCount     int                     `json:"error_count"`
	CreatedItems   []string                `json:"created_items"`
	Errors         []ImportValidationError `json:"errors"`
	ProcessingTime time.Duration           `json:"processing_time"`
}
