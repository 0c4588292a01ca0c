package bridgeconfig

import (
	"encoding/xml"
	"fmt"
	"os"
)

// LoadDocument reads and parses a configuration tree from path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}
	return &doc, nil
}
