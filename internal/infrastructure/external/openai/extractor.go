// Package openai extracts structured invoice data from documents with the
// GPT Vision API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"github.com/gen2brain/go-fitz"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Pages beyond this are ignored; invoices rarely carry coding-relevant data
// past the first two pages and each page costs Vision tokens.
const maxVisionPages = 2

// Extractor implements port.DocumentExtractor using GPT Vision
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a new Vision extractor
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Extract reads an invoice document and returns its structured fields.
// PDFs are rasterized page by page; JPEG and PNG files are sent as-is.
func (e *Extractor) Extract(ctx context.Context, path string) (*entity.ExtractedDocument, error) {
	e.logger.Info("Extracting invoice document", zap.String("path", path))

	images, err := e.renderDocument(path)
	if err != nil {
		e.logger.Error("Failed to render document", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", path)
	}

	if len(images) > maxVisionPages {
		images = images[:maxVisionPages]
	}

	return e.extractWithVision(ctx, images)
}

// renderDocument converts the document into one JPEG per page.
func (e *Extractor) renderDocument(path string) ([][]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return e.renderPDF(path)
	case ".jpg", ".jpeg", ".png":
		return e.readImageFile(path, ext)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (e *Extractor) renderPDF(path string) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var images [][]byte
	pageCount := doc.NumPage()

	e.logger.Debug("Rendering PDF", zap.String("path", path), zap.Int("pages", pageCount))

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			e.logger.Warn("Failed to render page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		data, err := encodeJPEG(img)
		if err != nil {
			e.logger.Warn("Failed to encode page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		images = append(images, data)
	}

	return images, nil
}

func (e *Extractor) readImageFile(path, ext string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var img image.Image
	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	case ".png":
		img, err = png.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	data, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}
	return [][]byte{data}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// extractWithVision sends the page images in one multi-modal request and
// parses the JSON reply.
func (e *Extractor) extractWithVision(ctx context.Context, images [][]byte) (*entity.ExtractedDocument, error) {
	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: visionPrompt,
		},
	}

	for i, data := range images {
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(data)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
		e.logger.Debug("Added page to request", zap.Int("page", i+1), zap.Int("size_bytes", len(data)))
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   4096,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: visionSystemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Vision API call failed", zap.Error(err))
		return nil, fmt.Errorf("Vision API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from Vision API")
	}

	content := resp.Choices[0].Message.Content

	var doc entity.ExtractedDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		e.logger.Error("Failed to parse Vision API response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if doc.InvoiceNumber == "" && doc.VendorName == "" {
		e.logger.Warn("Could not read invoice number or vendor name",
			zap.String("raw_response", content))
	}

	e.logger.Info("Invoice document extracted",
		zap.String("invoice_number", doc.InvoiceNumber),
		zap.String("vendor_name", doc.VendorName),
		zap.Float64("total_amount", doc.TotalAmount))

	return &doc, nil
}

// Verify interface compliance
var _ port.DocumentExtractor = (*Extractor)(nil)
