package arxiv

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	atomNS  = "http://www.w3.org/2005/Atom"
	arxivNS = "http://arxiv.org/schemas/atom"

	atomTimeLayout = "2006-01-02T15:04:05Z"
	dateLayout     = "2006-01-02"

	defaultLinkRel = "alternate"
)

// Metadata is one normalized arXiv entry.
type Metadata struct {
	ArxivID       string            `json:"arxiv_id"`
	EntryID       string            `json:"entry_id"` // full <id> URI
	Title         string            `json:"title"`
	Abstract      string            `json:"abstract"`
	Authors       []string          `json:"authors"`
	PublishedDate string            `json:"published_date"`
	UpdatedDate   string            `json:"updated_date"`
	Categories    []string          `json:"categories"`
	Links         map[string]string `json:"links"`
	Comment       *string           `json:"comment"`
}

// Atom feed structures for the arXiv API. Pointers distinguish a missing
// element from an empty one.

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	ID         *string        `xml:"http://www.w3.org/2005/Atom id"`
	Title      *string        `xml:"http://www.w3.org/2005/Atom title"`
	Summary    *string        `xml:"http://www.w3.org/2005/Atom summary"`
	Published  *string        `xml:"http://www.w3.org/2005/Atom published"`
	Updated    *string        `xml:"http://www.w3.org/2005/Atom updated"`
	Authors    []atomAuthor   `xml:"http://www.w3.org/2005/Atom author"`
	Links      []atomLink     `xml:"http://www.w3.org/2005/Atom link"`
	Categories []atomCategory `xml:"http://www.w3.org/2005/Atom category"`
	Comment    *string        `xml:"http://arxiv.org/schemas/atom comment"`
}

type atomAuthor struct {
	Name *string `xml:"http://www.w3.org/2005/Atom name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// Parse turns one arXiv Atom document into Metadata for its first entry.
// It returns ErrNoEntry for a feed without entries and a *ParseError when the
// document is malformed or the entry lacks a required field.
func Parse(data []byte) (*Metadata, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(feed.Entries) == 0 {
		return nil, ErrNoEntry
	}
	return parseEntry(&feed.Entries[0])
}

func parseEntry(e *atomEntry) (*Metadata, error) {
	title, err := required("title", e.Title)
	if err != nil {
		return nil, err
	}
	summary, err := required("summary", e.Summary)
	if err != nil {
		return nil, err
	}
	id, err := required("id", e.ID)
	if err != nil {
		return nil, err
	}
	published, err := required("published", e.Published)
	if err != nil {
		return nil, err
	}
	updated, err := required("updated", e.Updated)
	if err != nil {
		return nil, err
	}

	if len(e.Authors) == 0 {
		return nil, &ParseError{Field: "author", Err: errMissing}
	}
	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		name, err := required("author/name", a.Name)
		if err != nil {
			return nil, err
		}
		authors = append(authors, name)
	}

	publishedDate, err := reformatDate("published", published)
	if err != nil {
		return nil, err
	}
	updatedDate, err := reformatDate("updated", updated)
	if err != nil {
		return nil, err
	}

	links := make(map[string]string, len(e.Links))
	for _, l := range e.Links {
		rel := l.Title
		if rel == "" {
			rel = defaultLinkRel
		}
		links[rel] = l.Href
	}

	categories := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		categories = append(categories, c.Term)
	}

	var comment *string
	if e.Comment != nil {
		c := strings.TrimSpace(*e.Comment)
		comment = &c
	}

	return &Metadata{
		ArxivID:       lastSegment(id),
		EntryID:       id,
		Title:         NormalizeSpace(title),
		Abstract:      NormalizeSpace(summary),
		Authors:       authors,
		PublishedDate: publishedDate,
		UpdatedDate:   updatedDate,
		Categories:    categories,
		Links:         links,
		Comment:       comment,
	}, nil
}

// CanonicalID is the versionless identifier, keeping the archive prefix of
// old-style ids ("hep-th/9901001") that ArxivID drops.
func (m *Metadata) CanonicalID() string {
	if m.EntryID != "" {
		if id := IDFromURL(m.EntryID); id != "" {
			return id
		}
	}
	return StripVersion(m.ArxivID)
}

func required(field string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", &ParseError{Field: field, Err: errMissing}
	}
	return strings.TrimSpace(*v), nil
}

func reformatDate(field, s string) (string, error) {
	t, err := time.Parse(atomTimeLayout, s)
	if err != nil {
		return "", &ParseError{Field: field, Err: err}
	}
	return t.Format(dateLayout), nil
}

// NormalizeSpace collapses every run of whitespace, newlines included, into a
// single space and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lastSegment(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

const feedEnvelopeOpen = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="` + atomNS + `" xmlns:arxiv="` + arxivNS + `">`

// splitEntries cuts a multi-entry feed into standalone single-entry feeds so
// each entry can be parsed, and fail, on its own.
func splitEntries(data []byte) ([][]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var docs [][]byte
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return docs, &ParseError{Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Space != atomNS || start.Name.Local != "entry" {
			continue
		}
		var raw struct {
			Inner []byte `xml:",innerxml"`
		}
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return docs, &ParseError{Err: fmt.Errorf("entry %d: %w", len(docs), err)}
		}
		var buf bytes.Buffer
		buf.WriteString(feedEnvelopeOpen)
		buf.WriteString("<entry>")
		buf.Write(raw.Inner)
		buf.WriteString("</entry></feed>")
		docs = append(docs, buf.Bytes())
	}
}
