package document

import (
	"context"
	"fmt"
	"os"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

// FileSource loads the network from a request document on disk.
type FileSource struct {
	path   string
	format Format
}

// NewFileSource creates a FileSource; the format follows the file extension.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, format: FormatFromPath(path)}
}

// Load reads and decodes the document.
func (s *FileSource) Load(ctx context.Context) (*domain.NetworkDocument, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open network document: %w", err)
	}
	defer f.Close()

	req, err := Decode(f, s.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return req.Network()
}
