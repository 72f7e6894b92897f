package persistence

import "strings"

const prefixes = `PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX mu: <http://mu.semte.ch/vocabularies/core/>
PREFIX adms: <http://www.w3.org/ns/adms#>
PREFIX skos: <http://www.w3.org/2004/02/skos/core#>
PREFIX dcterms: <http://purl.org/dc/terms/>
PREFIX ext: <http://mu.semte.ch/vocabularies/ext/>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
`

// ResourceBase mints entity URIs under the configured base.
type ResourceBase struct {
	base string
}

func NewResourceBase(base string) ResourceBase {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return ResourceBase{base: base}
}

func (b ResourceBase) PersonURI(id string) string {
	return b.base + "id/person/" + id
}

func (b ResourceBase) AccountURI(id string) string {
	return b.base + "id/account/" + id
}

func (b ResourceBase) IdentifierURI(id string) string {
	return b.base + "id/identifier/" + id
}
