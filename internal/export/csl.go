// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id" json:"id"`
	Type           string    `yaml:"type" json:"type"`
	Title          string    `yaml:"title,omitempty" json:"title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty" json:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty" json:"container-title,omitempty"`
	JournalAbbrev  string    `yaml:"container-title-short,omitempty" json:"container-title-short,omitempty"`
	ISSN           string    `yaml:"ISSN,omitempty" json:"ISSN,omitempty"`
	Volume         string    `yaml:"volume,omitempty" json:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty" json:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty" json:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty" json:"keyword,omitempty"`
	Language       string    `yaml:"language,omitempty" json:"language,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty" json:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty" json:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty" json:"PMID,omitempty"`
	PMCID          string    `yaml:"PMCID,omitempty" json:"PMCID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty" json:"family,omitempty"`
	Given   string `yaml:"given,omitempty" json:"given,omitempty"`
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts" json:"date-parts"`
}

// FormatCSL writes articles as a CSL-YAML list to w.
func FormatCSL(articles []types.ParsedArticle, w io.Writer) error {
	items := make([]CSLItem, len(articles))
	for i, a := range articles {
		items[i] = ToCSLItem(a)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a ParsedArticle to a CSLItem. The PMID is the item
// ID; records without one fall back to the DOI.
func ToCSLItem(a types.ParsedArticle) CSLItem {
	item := CSLItem{
		ID:       a.ID(),
		Type:     "article-journal",
		Title:    deref(a.Title),
		Abstract: deref(a.Abstract),
		Keyword:  strings.Join(a.Keywords, ", "),
		DOI:      deref(a.DOI),
		PMID:     a.ID(),
		PMCID:    deref(a.PMCID),
		Issued:   issued(a),
	}
	if item.ID == "" {
		item.ID = item.DOI
	}
	if len(a.Languages) > 0 {
		item.Language = a.Languages[0]
	}

	for _, au := range a.Authors {
		if name, ok := cslName(au); ok {
			item.Author = append(item.Author, name)
		}
	}

	if j := a.Journal; j != nil {
		item.ContainerTitle = deref(j.Title)
		item.JournalAbbrev = deref(j.ISOAbbreviation)
		item.ISSN = deref(j.ISSN)
		item.Volume = deref(j.Volume)
		item.Issue = deref(j.Issue)
		item.Page = deref(j.Pagination)
	}

	return item
}

// cslName maps an author to a CSL name. Collective authors use the
// literal field; anonymous entries are dropped.
func cslName(a types.ParsedAuthor) (CSLName, bool) {
	if a.IsCollective() {
		name := deref(a.CollectiveName)
		return CSLName{Literal: name}, name != ""
	}
	given := deref(a.ForeName)
	if given == "" {
		given = deref(a.Initials)
	}
	n := CSLName{Family: deref(a.LastName), Given: given}
	if n.Family == "" && n.Given != "" {
		return CSLName{Literal: n.Given}, true
	}
	return n, n.Family != ""
}

// issued builds date-parts from the first complete article date, else
// from the journal issue date. Month names are accepted for the latter.
func issued(a types.ParsedArticle) *CSLDate {
	for _, d := range a.ArticleDates {
		if parts := dateParts(deref(d.Year), deref(d.Month), deref(d.Day)); parts != nil {
			return &CSLDate{DateParts: [][]int{parts}}
		}
	}
	if a.Journal != nil && a.Journal.PubDate != nil {
		pd := a.Journal.PubDate
		if parts := dateParts(deref(pd.Year), deref(pd.Month), deref(pd.Day)); parts != nil {
			return &CSLDate{DateParts: [][]int{parts}}
		}
	}
	if y, err := strconv.Atoi(a.Year()); err == nil {
		return &CSLDate{DateParts: [][]int{{y}}}
	}
	return nil
}

// dateParts returns [year], [year, month] or [year, month, day]. A
// component that does not parse ends the list.
func dateParts(year, month, day string) []int {
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return nil
	}
	parts := []int{y}
	m := monthNumber(month)
	if m == 0 {
		return parts
	}
	parts = append(parts, m)
	if d, err := strconv.Atoi(day); err == nil && d >= 1 && d <= 31 {
		parts = append(parts, d)
	}
	return parts
}

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

func monthNumber(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	if len(s) < 3 {
		return 0
	}
	for i, name := range monthNames {
		if strings.HasPrefix(s, name) {
			return i + 1
		}
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
