package services

import "testing"

func TestExtractPoliciesFromPDFRejectsGarbage(t *testing.T) {
	if _, err := ExtractPoliciesFromPDF([]byte("not a pdf")); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}

func TestExtractPoliciesFromPDFRejectsEmpty(t *testing.T) {
	if _, err := ExtractPoliciesFromPDF(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
