package source

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind is the physical shape of a statement file.
type Kind int

const (
	KindText Kind = iota
	KindCSV
	KindXLSX
	KindXLS
)

func (k Kind) String() string {
	switch k {
	case KindCSV:
		return "csv"
	case KindXLSX:
		return "xlsx"
	case KindXLS:
		return "xls"
	}
	return "text"
}

// Tabular reports whether k decodes into rows rather than lines.
func (k Kind) Tabular() bool { return k != KindText }

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// Sniff classifies a file from its first bytes, using the name only to
// tell CSV apart from plain text.
func Sniff(head []byte, name string) Kind {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return KindXLSX
	case bytes.HasPrefix(head, oleMagic):
		return KindXLS
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return KindCSV
	}
	return KindText
}
