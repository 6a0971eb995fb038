// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records produced by the citation extraction
// pipeline and the configuration shared by its stages.
//
// Optional scalar fields are pointers and nil means the source did not
// carry the field. Most fields also treat blank text as absent; grant and
// article-date fields keep a present but blank element as "". Sequences in
// an assembled ParsedArticle are never nil.
package types

// AuthorKind tags a ParsedAuthor as a person or a group.
type AuthorKind string

const (
	AuthorIndividual AuthorKind = "individual"
	AuthorCollective AuthorKind = "collective"
)

// ParsedAuthor is one entry of an article's author list.
//
// A collective author carries only CollectiveName. An individual author
// carries any subset of LastName, ForeName and Initials, including none
// (an anonymous entry, which is kept so that author positions stay intact).
type ParsedAuthor struct {
	Kind           AuthorKind `json:"kind" yaml:"kind"`
	LastName       *string    `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	ForeName       *string    `json:"fore_name,omitempty" yaml:"fore_name,omitempty"`
	Initials       *string    `json:"initials,omitempty" yaml:"initials,omitempty"`
	CollectiveName *string    `json:"collective_name,omitempty" yaml:"collective_name,omitempty"`

	// Affiliations lists non-blank affiliation strings in document order.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`
}

// IsCollective reports whether the author is a group.
func (a ParsedAuthor) IsCollective() bool {
	return a.Kind == AuthorCollective
}

// DisplayName returns "ForeName LastName", the collective name, or the
// best available subset. Anonymous entries return "".
func (a ParsedAuthor) DisplayName() string {
	if a.IsCollective() {
		return deref(a.CollectiveName)
	}
	fore, last := deref(a.ForeName), deref(a.LastName)
	if fore == "" {
		fore = deref(a.Initials)
	}
	switch {
	case fore == "":
		return last
	case last == "":
		return fore
	default:
		return fore + " " + last
	}
}

// JournalPubDate is the journal issue's publication date as recorded,
// including the free-form MedlineDate used for ranges and seasons.
type JournalPubDate struct {
	Year        *string `json:"year,omitempty" yaml:"year,omitempty"`
	Month       *string `json:"month,omitempty" yaml:"month,omitempty"`
	Day         *string `json:"day,omitempty" yaml:"day,omitempty"`
	Season      *string `json:"season,omitempty" yaml:"season,omitempty"`
	MedlineDate *string `json:"medline_date,omitempty" yaml:"medline_date,omitempty"`
}

// ParsedJournalInfo describes the journal issue an article appeared in.
// Pagination is taken from the article, not the journal element.
type ParsedJournalInfo struct {
	// Title is the full journal title, or the ISO abbreviation when the
	// full title is missing.
	Title           *string         `json:"title,omitempty" yaml:"title,omitempty"`
	ISOAbbreviation *string         `json:"iso_abbreviation,omitempty" yaml:"iso_abbreviation,omitempty"`
	ISSN            *string         `json:"issn,omitempty" yaml:"issn,omitempty"`
	ISSNType        *string         `json:"issn_type,omitempty" yaml:"issn_type,omitempty"`
	Volume          *string         `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue           *string         `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pagination      *string         `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	PubDate         *JournalPubDate `json:"pub_date,omitempty" yaml:"pub_date,omitempty"`
}

// ParsedMeshQualifier is a subheading attached to a MeSH descriptor.
type ParsedMeshQualifier struct {
	Name         string  `json:"name" yaml:"name"`
	UI           *string `json:"ui,omitempty" yaml:"ui,omitempty"`
	IsMajorTopic bool    `json:"is_major_topic" yaml:"is_major_topic"`
}

// ParsedMeshTerm is one MeSH heading: a descriptor and its qualifiers.
type ParsedMeshTerm struct {
	Descriptor   string                `json:"descriptor" yaml:"descriptor"`
	DescriptorUI *string               `json:"descriptor_ui,omitempty" yaml:"descriptor_ui,omitempty"`
	IsMajorTopic bool                  `json:"is_major_topic" yaml:"is_major_topic"`
	Qualifiers   []ParsedMeshQualifier `json:"qualifiers" yaml:"qualifiers"`
}

// ParsedGrant is a funding record. Every field is independently optional.
type ParsedGrant struct {
	GrantID *string `json:"grant_id,omitempty" yaml:"grant_id,omitempty"`
	Acronym *string `json:"acronym,omitempty" yaml:"acronym,omitempty"`
	Agency  *string `json:"agency,omitempty" yaml:"agency,omitempty"`
	Country *string `json:"country,omitempty" yaml:"country,omitempty"`
}

// ParsedArticleDate is a dated event of the article itself (for example
// electronic publication). Components are passed through unvalidated.
type ParsedArticleDate struct {
	Year  *string `json:"year,omitempty" yaml:"year,omitempty"`
	Month *string `json:"month,omitempty" yaml:"month,omitempty"`
	Day   *string `json:"day,omitempty" yaml:"day,omitempty"`
	Type  *string `json:"type,omitempty" yaml:"type,omitempty"`
}

// ParsedArticle is the structured form of one citation record.
type ParsedArticle struct {
	PMID             *string             `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Title            *string             `json:"title,omitempty" yaml:"title,omitempty"`
	Authors          []ParsedAuthor      `json:"authors" yaml:"authors"`
	Journal          *ParsedJournalInfo  `json:"journal,omitempty" yaml:"journal,omitempty"`
	MeshTerms        []ParsedMeshTerm    `json:"mesh_terms" yaml:"mesh_terms"`
	Grants           []ParsedGrant       `json:"grants" yaml:"grants"`
	DOI              *string             `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMCID            *string             `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	PublicationTypes []string            `json:"publication_types" yaml:"publication_types"`
	Keywords         []string            `json:"keywords" yaml:"keywords"`
	Languages        []string            `json:"languages" yaml:"languages"`
	Abstract         *string             `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	ArticleDates     []ParsedArticleDate `json:"article_dates" yaml:"article_dates"`
}

// ID returns the PMID or "" when the record has none.
func (a ParsedArticle) ID() string {
	return deref(a.PMID)
}

// Year returns the publication year: the first article date with a
// numeric year, else the journal issue year, else the leading year of the
// issue's MedlineDate. It returns "" when none is recorded.
func (a ParsedArticle) Year() string {
	for _, d := range a.ArticleDates {
		if y := deref(d.Year); isYear(y) {
			return y
		}
	}
	if a.Journal == nil || a.Journal.PubDate == nil {
		return ""
	}
	if y := deref(a.Journal.PubDate.Year); isYear(y) {
		return y
	}
	if md := deref(a.Journal.PubDate.MedlineDate); len(md) >= 4 && isYear(md[:4]) {
		return md[:4]
	}
	return ""
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Str returns a pointer to s. It is a convenience for building records.
func Str(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
