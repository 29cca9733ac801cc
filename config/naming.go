package config

import (
	"strings"

	"github.com/iancoleman/strcase"
)

type NamingConvention interface {
	// ToEnvelopeKey converts a record kind to the key wrapping a single record, "Tour" -> "tour"
	ToEnvelopeKey(kind string) string
	// ToEnvelopeListKey converts a record kind to the key wrapping a list of records, "Tour" -> "tours"
	ToEnvelopeListKey(kind string) string
	// ToSlug converts a display name to a url friendly identifier, "The Forest Hiker" -> "the-forest-hiker"
	ToSlug(name string) string
}

type defaultNaming struct {
}

func NewDefaultNaming() NamingConvention {
	return &defaultNaming{}
}

func (n *defaultNaming) ToEnvelopeKey(kind string) string {
	return strcase.ToLowerCamel(kind)
}

func (n *defaultNaming) ToEnvelopeListKey(kind string) string {
	key := strcase.ToLowerCamel(kind)
	if strings.HasSuffix(key, "s") {
		return key
	}
	return key + "s"
}

func (n *defaultNaming) ToSlug(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}
