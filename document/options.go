package document

import "time"

// Option is a functional option for configuring a Renderer.
type Option func(*config)

type config struct {
	title        string
	author       string
	creator      string
	compress     bool
	creationDate time.Time
	pageNumbers  bool
	letterhead   string
	fingerprint  string
}

func defaultConfig() *config {
	return &config{
		title:    Title,
		creator:  "pbitdoc",
		compress: true,
	}
}

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(c *config) {
		c.author = author
	}
}

// WithCreator sets the document creator metadata.
func WithCreator(creator string) Option {
	return func(c *config) {
		c.creator = creator
	}
}

// WithCompression toggles page stream compression. Uncompressed output keeps
// page text searchable in the raw bytes.
func WithCompression(compress bool) Option {
	return func(c *config) {
		c.compress = compress
	}
}

// WithCreationDate fixes the creation date so identical input yields
// identical bytes.
func WithCreationDate(t time.Time) Option {
	return func(c *config) {
		c.creationDate = t
	}
}

// WithPageNumbers adds a "Page N/M" footer to every page.
func WithPageNumbers(enabled bool) Option {
	return func(c *config) {
		c.pageNumbers = enabled
	}
}

// WithLetterhead uses the first page of the PDF at path as the background of
// the title page.
func WithLetterhead(path string) Option {
	return func(c *config) {
		c.letterhead = path
	}
}

// WithFingerprintQR draws code as a QR code in the bottom-right corner of the
// title page. An empty code disables it.
func WithFingerprintQR(code string) Option {
	return func(c *config) {
		c.fingerprint = code
	}
}
