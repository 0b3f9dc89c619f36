// Package dump reads MediaWiki XML dumps one page at a time.
package dump

import (
	"compress/bzip2"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// SiteInfo is the toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string      `xml:"sitename"`
	DBName     string      `xml:"dbname"`
	Base       string      `xml:"base"`
	Generator  string      `xml:"generator"`
	Case       string      `xml:"case"`
	Namespaces []Namespace `xml:"namespaces>namespace"`
}

// Namespace is one entry of the dump's namespace table.
type Namespace struct {
	Key   int    `xml:"key,attr"`
	Case  string `xml:"case,attr"`
	Value string `xml:",chardata"`
}

// NamespaceName returns the name of namespace key, "" for the main
// namespace or an unknown key.
func (si SiteInfo) NamespaceName(key int) string {
	for _, ns := range si.Namespaces {
		if ns.Key == key {
			return ns.Value
		}
	}
	return ""
}

// Contributor is a user who contributed a revision.
type Contributor struct {
	ID       uint64 `xml:"id"`
	Username string `xml:"username"`
	IP       string `xml:"ip"`
}

// Revision is one revision of a page.
type Revision struct {
	ID          uint64      `xml:"id"`
	ParentID    uint64      `xml:"parentid"`
	Timestamp   string      `xml:"timestamp"`
	Contributor Contributor `xml:"contributor"`
	Comment     string      `xml:"comment"`
	Model       string      `xml:"model"`
	Format      string      `xml:"format"`
	Text        string      `xml:"text"`
}

// Time parses the revision timestamp. A missing or malformed timestamp
// yields the zero time.
func (r Revision) Time() time.Time {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Page is one wiki page with its latest revision.
type Page struct {
	Title     string `xml:"title"`
	Namespace int    `xml:"ns"`
	ID        uint64 `xml:"id"`
	Redirect  struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revisions []Revision `xml:"revision"`
}

// Latest returns the page's last revision, or a zero Revision.
func (p *Page) Latest() Revision {
	if len(p.Revisions) == 0 {
		return Revision{}
	}
	return p.Revisions[len(p.Revisions)-1]
}

// Parser emits the pages of a single-stream dump in order.
type Parser struct {
	// SiteInfo is the dump's toplevel site info.
	SiteInfo SiteInfo
	x        *xml.Decoder
	pending  *xml.StartElement
}

// NewParser returns a dump parser reading from r. It consumes the
// <mediawiki> start element and the <siteinfo> block.
func NewParser(r io.Reader) (*Parser, error) {
	d := xml.NewDecoder(r)

	if err := seek(d, "mediawiki"); err != nil {
		return nil, fmt.Errorf("failed to read dump header: %w", err)
	}

	p := &Parser{x: d}
	start, err := nextElement(d)
	if err != nil {
		return nil, fmt.Errorf("failed to read site info: %w", err)
	}
	if start.Name.Local == "siteinfo" {
		if err := d.DecodeElement(&p.SiteInfo, &start); err != nil {
			return nil, fmt.Errorf("failed to decode site info: %w", err)
		}
		return p, nil
	}
	if start.Name.Local != "page" {
		return nil, fmt.Errorf("unexpected element <%s> in dump header", start.Name.Local)
	}
	// A dump without site info starts with its first page.
	p.pending = &start
	return p, nil
}

// Next returns the next page. It returns io.EOF after the last page.
func (p *Parser) Next() (*Page, error) {
	var start xml.StartElement
	if p.pending != nil {
		start, p.pending = *p.pending, nil
	} else {
		var err error
		if start, err = nextElement(p.x); err != nil {
			return nil, err
		}
	}
	if start.Name.Local != "page" {
		if err := p.x.Skip(); err != nil {
			return nil, err
		}
		return p.Next()
	}
	page := new(Page)
	if err := p.x.DecodeElement(page, &start); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return page, nil
}

// seek advances d past the start element named local.
func seek(d *xml.Decoder, local string) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			return nil
		}
	}
}

// nextElement returns the next start element at the current level. The end
// of the enclosing element reads as io.EOF.
func nextElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, io.EOF
		}
	}
}

// File is an open dump file. Close releases the underlying file.
type File struct {
	*Parser
	f *os.File
}

// Open opens a dump file, decompressing .bz2 files on the fly.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".bz2") {
		r = bzip2.NewReader(f)
	}
	p, err := NewParser(r)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Parser: p, f: f}, nil
}

// Close closes the dump file.
func (f *File) Close() error {
	return f.f.Close()
}

// PageRef is the short form of a page used in log lines.
func (p *Page) PageRef() string {
	return strconv.FormatUint(p.ID, 10) + ":" + p.Title
}
