package loader

import "os"

// TextLoader reads plain-text notes.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Extensions() []string {
	return []string{".txt"}
}

func (l *TextLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarkdownLoader reads markdown notes. Markdown markup is left in place;
// it embeds fine and the model reads it.
type MarkdownLoader struct{}

func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

func (l *MarkdownLoader) Extensions() []string {
	return []string{".md", ".markdown"}
}

func (l *MarkdownLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
