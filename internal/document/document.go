// Package document loads translation units from gettext PO files. Parsing
// is delegated to the gotext library; this package only flattens its
// catalog into the unit records the store indexes.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/leonelquinteros/gotext"

	"github.com/localizers/tmatch/internal/tmstore"
)

var (
	// ErrUnsupportedFormat is returned for files that are not PO catalogs
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Document is a loaded translation file.
type Document struct {
	Path  string
	Units []tmstore.Unit
}

// Name returns the document's base file name, used when pushing the store
// to a remote TM server.
func (d *Document) Name() string {
	return filepath.Base(d.Path)
}

// Load parses the PO file at path into translation units. The header entry
// (empty msgid) is skipped. Units are returned in a stable order so that
// reindexing the same file produces the same store contents.
func Load(path string) (*Document, error) {
	if filepath.Ext(path) != ".po" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	po := gotext.NewPo()
	po.ParseFile(path)

	domain := po.GetDomain()
	if domain == nil {
		return nil, fmt.Errorf("failed to parse document: %s", path)
	}

	translations := domain.GetTranslations()

	ids := make([]string, 0, len(translations))
	for id := range translations {
		if id == "" {
			continue // PO header
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	units := make([]tmstore.Unit, 0, len(ids))
	for _, id := range ids {
		tr := translations[id]
		if tr == nil {
			continue
		}
		target := tr.Get()
		if target == id {
			// gotext falls back to the msgid for untranslated
			// entries; store those as untranslated
			if !tr.IsTranslated() {
				target = ""
			}
		}
		units = append(units, tmstore.Unit{
			Source: id,
			Target: target,
		})
	}

	return &Document{Path: path, Units: units}, nil
}
