package entity

import "time"

// ExtractedDocument holds the structured fields pulled out of an invoice
// PDF by the Vision extraction pipeline.
type ExtractedDocument struct {
	VendorName    string          `json:"vendor_name"`
	VendorCode    string          `json:"vendor_code"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	Currency      string          `json:"currency"`
	TotalAmount   float64         `json:"total_amount"`
	TaxAmount     float64         `json:"tax_amount"`
	Items         []ExtractedItem `json:"items"`
	Remarks       string          `json:"remarks"`
}

// ExtractedItem is a line item read off the document.
type ExtractedItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// FileHash links a content hash to the store record created from it.
type FileHash struct {
	ID        int64     `json:"id"`
	Hash      string    `json:"hash"`
	FileName  string    `json:"file_name"`
	RecordID  string    `json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DuplicateCheckResult reports whether a document has been seen before.
type DuplicateCheckResult struct {
	IsDuplicate bool       `json:"is_duplicate"`
	RecordID    string     `json:"record_id,omitempty"`
	FileName    string     `json:"file_name,omitempty"`
	FirstSeenAt *time.Time `json:"first_seen_at,omitempty"`
}

// ExportBatch records one XLSX export run.
type ExportBatch struct {
	ID          int64     `json:"id"`
	BatchKey    string    `json:"batch_key"`
	FilePath    string    `json:"file_path"`
	RecordCount int       `json:"record_count"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
