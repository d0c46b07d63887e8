// Package identifier encodes remote resource references into the combined
// identifier strings used as file and folder identifiers throughout the driver.
package identifier

import (
	"fmt"
	"strings"
)

// Scheme is the kind of a remote resource
type Scheme string

const (
	SchemeFolder   Scheme = "folder"
	SchemeAlbum    Scheme = "album"
	SchemeImage    Scheme = "image"
	SchemeDocument Scheme = "document"
)

const (
	// Separator joins scheme and id inside a combined identifier
	Separator = "<>"

	// Root is the sentinel id of the top level folder
	Root = "ROOT"

	processedPrefix = "processed_"
)

// Combined is a decoded combined identifier
type Combined struct {
	Scheme Scheme
	ID     string
}

// String encodes the identifier
func (c Combined) String() string {
	return string(c.Scheme) + Separator + c.ID
}

// IsFolder reports whether the identifier points to a folder or album
func (c Combined) IsFolder() bool {
	return IsFolderScheme(c.Scheme)
}

// Valid reports whether s is a known scheme token
func (s Scheme) Valid() bool {
	switch s {
	case SchemeFolder, SchemeAlbum, SchemeImage, SchemeDocument:
		return true
	}
	return false
}

// IsFolderScheme reports whether the scheme can contain other resources
func IsFolderScheme(s Scheme) bool {
	return s == SchemeFolder || s == SchemeAlbum
}

// Encode builds the combined identifier string for scheme and id
func Encode(scheme Scheme, id string) string {
	return Combined{Scheme: scheme, ID: id}.String()
}

// Decode splits a combined identifier into scheme and id.
// The bare root sentinel decodes to the root folder.
func Decode(value string) (Combined, error) {
	if value == Root {
		return Combined{Scheme: SchemeFolder, ID: Root}, nil
	}

	scheme, id, found := strings.Cut(value, Separator)
	if !found {
		return Combined{}, fmt.Errorf("%w: %q has no separator", ErrInvalidIdentifier, value)
	}

	s := Scheme(scheme)
	if !s.Valid() {
		return Combined{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidIdentifier, scheme)
	}

	// Root folders and freshly created album placeholders may carry an empty id
	if id == "" && !IsFolderScheme(s) {
		return Combined{}, fmt.Errorf("%w: %q has an empty id", ErrInvalidIdentifier, value)
	}

	return Combined{Scheme: s, ID: id}, nil
}

// MustDecode is Decode for identifiers that are known to be well formed
func MustDecode(value string) Combined {
	c, err := Decode(value)
	if err != nil {
		panic(err)
	}
	return c
}

// IsValid reports whether value decodes without error
func IsValid(value string) bool {
	_, err := Decode(value)
	return err == nil
}

// SchemeOf returns the scheme of value or an empty scheme when it is malformed
func SchemeOf(value string) Scheme {
	c, err := Decode(value)
	if err != nil {
		return ""
	}
	return c.Scheme
}

// IDOf returns the id part of value or an empty string when it is malformed
func IDOf(value string) string {
	c, err := Decode(value)
	if err != nil {
		return ""
	}
	return c.ID
}

// ToProcessedIdentifier derives the identifier of a rendition of value
func ToProcessedIdentifier(value string) string {
	return processedPrefix + value
}

// FromProcessedIdentifier strips the rendition prefix again
func FromProcessedIdentifier(value string) string {
	return strings.TrimPrefix(value, processedPrefix)
}

// BuildRoot returns the combined identifier of the configured root folder
func BuildRoot(scheme Scheme, rootFolder string) string {
	if scheme != SchemeAlbum {
		scheme = SchemeFolder
	}
	if rootFolder == "" {
		rootFolder = Root
	}
	return Encode(scheme, rootFolder)
}
