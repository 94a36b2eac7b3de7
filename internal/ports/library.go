package ports

// LibraryItem is one prompt revision as it appears in an exported library.
type LibraryItem struct {
	Name        string
	Description string
	Instruction string
	Body        string
}

// Exporter serializes a prompt library to one on-disk format.
type Exporter interface {
	Format() string
	Export(items []LibraryItem) ([]byte, error)
}

// Parser reads a prompt library back from one on-disk format.
type Parser interface {
	Format() string
	Parse(data []byte) ([]LibraryItem, error)
}
