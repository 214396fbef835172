package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"go.uber.org/zap"
)

// Store field names. The base schema is managed outside this service; these
// names are the contract with it.
const (
	fieldInvoiceNumber   = "Invoice Number"
	fieldVendorName      = "Vendor Name"
	fieldVendorCode      = "Vendor Code"
	fieldInvoiceDate     = "Invoice Date"
	fieldDueDate         = "Due Date"
	fieldAmount          = "Amount"
	fieldCurrency        = "Currency"
	fieldStatus          = "Status"
	fieldTeam            = "Team"
	fieldProject         = "Project"
	fieldTask            = "Task"
	fieldCostCenter      = "Cost Center"
	fieldGLAccount       = "GL Account"
	fieldMultilineCoding = "Multiline Coding"
	fieldLineItems       = "Line Items"
	fieldMissingFields   = "Missing Fields"
	fieldFileHash        = "File Hash"
	fieldLastModified    = "Last Modified"
)

// record is the wire shape of one Airtable record.
type record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type recordList struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// ListInvoices fetches every record of the invoice table, following the
// pagination offset until exhausted.
func (c *Client) ListInvoices(ctx context.Context) ([]*entity.Invoice, error) {
	var invoices []*entity.Invoice
	offset := ""

	for {
		query := url.Values{}
		if offset != "" {
			query.Set("offset", offset)
		}

		body, err := c.doRequest(ctx, http.MethodGet, "", query, nil)
		if err != nil {
			c.logger.Error("Failed to list records", zap.Error(err))
			return nil, fmt.Errorf("failed to list records: %w", err)
		}

		var page recordList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse record list: %w", err)
		}

		for _, rec := range page.Records {
			invoices = append(invoices, recordToInvoice(rec))
		}

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	c.logger.Debug("Listed invoice records", zap.Int("count", len(invoices)))
	return invoices, nil
}

// GetInvoice fetches a single record by id.
func (c *Client) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/"+url.PathEscape(id), nil, nil)
	if err != nil {
		c.logger.Error("Failed to get record", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}

	return recordToInvoice(rec), nil
}

// FindByFileHash looks up the record holding a document with the given
// content hash. Returns nil without error when no record matches.
func (c *Client) FindByFileHash(ctx context.Context, hash string) (*entity.Invoice, error) {
	query := url.Values{}
	query.Set("filterByFormula", fmt.Sprintf("{%s} = '%s'", fieldFileHash, hash))
	query.Set("maxRecords", "1")

	body, err := c.doRequest(ctx, http.MethodGet, "", query, nil)
	if err != nil {
		c.logger.Error("Failed to look up record by hash", zap.Error(err))
		return nil, fmt.Errorf("failed to look up record by hash: %w", err)
	}

	var page recordList
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse record list: %w", err)
	}
	if len(page.Records) == 0 {
		return nil, nil
	}

	return recordToInvoice(page.Records[0]), nil
}

// updatableFields maps the domain field keys used by the application layer
// to store column names.
var updatableFields = map[string]string{
	"vendorName":      fieldVendorName,
	"vendorCode":      fieldVendorCode,
	"invoiceNumber":   fieldInvoiceNumber,
	"invoiceDate":     fieldInvoiceDate,
	"dueDate":         fieldDueDate,
	"amount":          fieldAmount,
	"currency":        fieldCurrency,
	"status":          fieldStatus,
	"team":            fieldTeam,
	"project":         fieldProject,
	"task":            fieldTask,
	"costCenter":      fieldCostCenter,
	"glAccount":       fieldGLAccount,
	"multilineCoding": fieldMultilineCoding,
	"lines":           fieldLineItems,
}

func translateFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		name, ok := updatableFields[key]
		if !ok {
			name = key
		}
		// Line items live in a long-text column as JSON.
		if key == "lines" {
			if data, err := json.Marshal(value); err == nil {
				value = string(data)
			}
		}
		out[name] = value
	}
	return out
}

// UpdateInvoice patches only the given fields on a record. Keys are domain
// field names; they are translated to store column names here.
func (c *Client) UpdateInvoice(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
	payload := map[string]any{"fields": translateFields(fields)}

	body, err := c.doRequest(ctx, http.MethodPatch, "/"+url.PathEscape(id), nil, payload)
	if err != nil {
		c.logger.Error("Failed to update record", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update record %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}

	c.logger.Info("Record updated", zap.String("id", id), zap.Int("fields", len(fields)))
	return recordToInvoice(rec), nil
}

// CreateInvoice creates a new record from the invoice.
func (c *Client) CreateInvoice(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	payload := map[string]any{"fields": invoiceToFields(inv)}

	body, err := c.doRequest(ctx, http.MethodPost, "", nil, payload)
	if err != nil {
		c.logger.Error("Failed to create record", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}

	created := recordToInvoice(rec)
	c.logger.Info("Record created",
		zap.String("id", created.ID),
		zap.String("invoice_number", created.InvoiceNumber))
	return created, nil
}

// recordToInvoice maps a wire record to the domain entity. Absent or
// malformed fields fall back to zero values; the validation layer reports
// what is actually missing.
func recordToInvoice(rec record) *entity.Invoice {
	f := rec.Fields

	inv := &entity.Invoice{
		ID:                   rec.ID,
		InvoiceNumber:        stringField(f, fieldInvoiceNumber),
		VendorName:           stringField(f, fieldVendorName),
		VendorCode:           stringField(f, fieldVendorCode),
		InvoiceDate:          dateField(f, fieldInvoiceDate),
		DueDate:              dateField(f, fieldDueDate),
		Amount:               floatField(f, fieldAmount),
		Currency:             stringField(f, fieldCurrency),
		Status:               entity.Status(stringField(f, fieldStatus)),
		Team:                 stringSliceField(f, fieldTeam),
		Project:              stringField(f, fieldProject),
		Task:                 stringField(f, fieldTask),
		CostCenter:           stringField(f, fieldCostCenter),
		GLAccount:            stringField(f, fieldGLAccount),
		MultilineCoding:      boolField(f, fieldMultilineCoding),
		MissingFieldsMessage: stringField(f, fieldMissingFields),
		FileHash:             stringField(f, fieldFileHash),
	}

	if raw := stringField(f, fieldLineItems); raw != "" {
		var lines []entity.Line
		if err := json.Unmarshal([]byte(raw), &lines); err == nil {
			inv.Lines = lines
		}
	}

	if ts := timeField(f, fieldLastModified); ts != nil {
		inv.UpdatedAt = *ts
	} else if rec.CreatedTime != "" {
		if created, err := time.Parse(time.RFC3339, rec.CreatedTime); err == nil {
			inv.UpdatedAt = created
		}
	}

	return inv
}

// invoiceToFields maps the writable subset of the entity back to store
// fields. Computed fields (missing-fields formula, last-modified) stay out.
func invoiceToFields(inv *entity.Invoice) map[string]any {
	fields := map[string]any{
		fieldInvoiceNumber:   inv.InvoiceNumber,
		fieldVendorName:      inv.VendorName,
		fieldVendorCode:      inv.VendorCode,
		fieldAmount:          inv.Amount,
		fieldCurrency:        inv.Currency,
		fieldStatus:          inv.Status.String(),
		fieldMultilineCoding: inv.MultilineCoding,
		fieldFileHash:        inv.FileHash,
	}

	if inv.InvoiceDate != nil {
		fields[fieldInvoiceDate] = inv.InvoiceDate.Format("2006-01-02")
	}
	if inv.DueDate != nil {
		fields[fieldDueDate] = inv.DueDate.Format("2006-01-02")
	}
	if len(inv.Team) > 0 {
		fields[fieldTeam] = inv.Team
	}
	if inv.Project != "" {
		fields[fieldProject] = inv.Project
	}
	if inv.Task != "" {
		fields[fieldTask] = inv.Task
	}
	if inv.CostCenter != "" {
		fields[fieldCostCenter] = inv.CostCenter
	}
	if inv.GLAccount != "" {
		fields[fieldGLAccount] = inv.GLAccount
	}
	if len(inv.Lines) > 0 {
		if data, err := json.Marshal(inv.Lines); err == nil {
			fields[fieldLineItems] = string(data)
		}
	}

	return fields
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func floatField(fields map[string]any, name string) float64 {
	if v, ok := fields[name].(float64); ok {
		return v
	}
	return 0
}

func boolField(fields map[string]any, name string) bool {
	if v, ok := fields[name].(bool); ok {
		return v
	}
	return false
}

func stringSliceField(fields map[string]any, name string) []string {
	raw, ok := fields[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func dateField(fields map[string]any, name string) *time.Time {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

func timeField(fields map[string]any, name string) *time.Time {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// Verify interface compliance
var _ port.RecordStore = (*Client)(nil)
