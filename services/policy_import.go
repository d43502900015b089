package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PolicyImportResult is the outcome of extracting policy text from an
// uploaded PDF.
type PolicyImportResult struct {
	Policies  []string `json:"policies"`
	Pages     int      `json:"pages"`
	CharCount int      `json:"char_count"`
}

// ExtractPoliciesFromPDF pulls plain text out of an uploaded policy document
// and splits it into paragraph-sized policy entries. Blank lines separate
// entries; very short fragments are dropped.
func ExtractPoliciesFromPDF(data []byte) (*PolicyImportResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	result := &PolicyImportResult{Pages: pages}
	for _, block := range strings.Split(sb.String(), "\n\n") {
		entry := strings.TrimSpace(strings.Join(strings.Fields(block), " "))
		if len(entry) < 20 {
			continue
		}
		result.Policies = append(result.Policies, entry)
		result.CharCount += len(entry)
	}

	if len(result.Policies) == 0 {
		return nil, fmt.Errorf("no extractable text found in %d pages", pages)
	}
	return result, nil
}
