package app

import (
	"context"
	"os"

	exreg "promptforge/internal/adapters/exporter/registry"
	parreg "promptforge/internal/adapters/parser/registry"
	"promptforge/internal/usecase/exporter"
	"promptforge/internal/usecase/importer"
)

// LibraryAPI exposes library import and export.
type LibraryAPI struct {
	Exporter  *exporter.Service
	Importer  *importer.Service
	Exporters *exreg.Registry
	Parsers   *parreg.Registry
}

func NewLibraryAPI(exp *exporter.Service, imp *importer.Service, exporters *exreg.Registry, parsers *parreg.Registry) *LibraryAPI {
	return &LibraryAPI{Exporter: exp, Importer: imp, Exporters: exporters, Parsers: parsers}
}

func (a *LibraryAPI) Formats() (export []string, imp []string) {
	return a.Exporters.Formats(), a.Parsers.Formats()
}

// Export writes the library to path in the given format.
func (a *LibraryAPI) Export(ctx context.Context, format, path string) error {
	data, err := a.Exporter.ExportLibrary(ctx, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Import loads a library file, creating a prompt per item.
func (a *LibraryAPI) Import(ctx context.Context, format, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	res, err := a.Importer.Import(ctx, format, data)
	if err != nil {
		return 0, err
	}
	return res.Imported, nil
}
