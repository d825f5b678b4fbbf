package pep

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pepgraph/pepgraph/pkg/errors"
)

// Document source extensions recognized by LoadDir.
var sourceExtensions = map[string]bool{
	".rst": true,
	".txt": true,
}

// LoadDir reads every .rst and .txt file directly under dir, sorted by
// filename. The filename is carried for logging only; document identity
// always comes from the "PEP:" header field.
func LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document directory not found: %s", dir)
		}
		return nil, err
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !sourceExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: entry.Name(), Text: string(text)})
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Name, b.Name)
	})
	return docs, nil
}
