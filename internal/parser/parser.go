package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"policy-chatbot/internal/config"
	"policy-chatbot/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 200  // characters
	defaultPageNumber   = 1
)

type parserConfig struct {
	chunkSize    int
	chunkOverlap int
}

// Parse extracts text from the file and splits it into overlapping chunks
// tagged with page numbers. Supported formats: .pdf, .docx, .xlsx, .ods,
// .txt. Spreadsheet sheets are treated as pages.
func Parse(filePath string, cfg *config.Config) ([]models.Chunk, error) {
	p := parserConfig{
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
	if cfg != nil && cfg.RAG.ChunkSize > 0 {
		p.chunkSize = cfg.RAG.ChunkSize
		p.chunkOverlap = cfg.RAG.ChunkOverlap
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return p.parsePDF(filePath)
	case ".docx":
		return p.parseDOCX(filePath)
	case ".xlsx":
		return p.parseXLSX(filePath)
	case ".ods":
		return p.parseODS(filePath)
	case ".txt":
		return p.parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (p *parserConfig) parsePDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", filepath.Base(filePath), err)
	}

	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i, err)
		}
		pageText = cleanText(pageText)
		if pageText == "" {
			continue
		}
		chunks = append(chunks, p.getChunks(pageText, i)...)
	}
	return chunks, nil
}

func (p *parserConfig) parseDOCX(filePath string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := r.Editable()
	content := cleanText(doc.GetContent())
	if content == "" {
		return nil, nil
	}
	// DOCX has no page numbers
	return p.getChunks(content, defaultPageNumber), nil
}

// parseXLSX flattens each sheet to tab-separated text. Sheets stand in for
// pages, 1-based.
func (p *parserConfig) parseXLSX(filePath string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString("Sheet: " + sheet.Name + "\n")
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		content := cleanText(text.String())
		if content == "" {
			continue
		}
		chunks = append(chunks, p.getChunks(content, sheetNum+1)...)
	}
	return chunks, nil
}

func (p *parserConfig) parseODS(filePath string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString("Sheet: " + sheetName + "\n")
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		content := cleanText(text.String())
		if content == "" {
			continue
		}
		chunks = append(chunks, p.getChunks(content, sheetNum+1)...)
	}
	return chunks, nil
}

func (p *parserConfig) parseText(filePath string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	content := cleanText(string(data))
	if content == "" {
		return nil, nil
	}
	return p.getChunks(content, defaultPageNumber), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}

// chunkContent splits content into chunks of at most maxChars characters
// with overlapChars shared between consecutive chunks.
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	runes := []rune(content)
	total := len(runes)
	if total <= maxChars {
		return []string{content}
	}

	step := maxChars - overlapChars
	var chunks []string
	for start := 0; start < total; start += step {
		end := min(start+maxChars, total)
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == total {
			break
		}
	}
	return chunks
}

// getChunks turns one page's content into chunks tagged with the page number.
func (p *parserConfig) getChunks(content string, pageNumber int) []models.Chunk {
	var chunks []models.Chunk
	for i, chunkString := range chunkContent(content, p.chunkSize, p.chunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Content:    chunkString,
			PageNumber: pageNumber,
			ChunkID:    i + 1,
		})
	}
	return chunks
}
