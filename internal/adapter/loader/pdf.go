package loader

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFLoader extracts plain text from PDF lecture slides.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Extensions() []string {
	return []string{".pdf"}
}

func (l *PDFLoader) Load(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
