// Package feed decodes a package's release feed into raw release records.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/net/html/charset"

	"github.com/git-pkgs/pkgversions/internal/core"
)

// PubDateLayout is the RFC 1123 timestamp used by the index's <pubDate>.
// The day may or may not be zero padded.
const PubDateLayout = "Mon, 2 Jan 2006 15:04:05 MST"

var errNoRoot = errors.New("document has no root element")

// Parse returns one record per <item> of every <channel>, in document order.
// A document that is not well-formed XML yields a *core.ParseError.
func Parse(data []byte) ([]core.RawReleaseRecord, error) {
	channels, err := scanChannels(data)
	if err != nil {
		return nil, &core.ParseError{Err: err}
	}

	parser := &rss.Parser{}
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &core.ParseError{Err: err}
	}

	items := feed.Items
	if len(channels) > 1 {
		items = nil
		for _, ch := range channels {
			f, err := parser.Parse(bytes.NewReader(wrapChannel(ch)))
			if err != nil {
				return nil, &core.ParseError{Err: err}
			}
			items = append(items, f.Items...)
		}
	}

	records := make([]core.RawReleaseRecord, 0, len(items))
	for _, item := range items {
		records = append(records, record(item))
	}
	return records, nil
}

// scanChannels walks data with a strict decoder and returns the raw bytes of
// each <channel> child of the root element.
func scanChannels(data []byte) ([][]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	var (
		channels [][]byte
		depth    int
		start    int64
		seenRoot bool
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			seenRoot = true
			if depth == 2 && el.Name.Local == "channel" {
				start = offset
			}
		case xml.EndElement:
			if depth == 2 && el.Name.Local == "channel" {
				channels = append(channels, data[start:dec.InputOffset()])
			}
			depth--
		}
	}
	if !seenRoot {
		return nil, errNoRoot
	}
	return channels, nil
}

func wrapChannel(channel []byte) []byte {
	doc := make([]byte, 0, len(channel)+32)
	doc = append(doc, `<rss version="2.0">`...)
	doc = append(doc, channel...)
	return append(doc, `</rss>`...)
}

func record(item *rss.Item) core.RawReleaseRecord {
	r := core.RawReleaseRecord{
		Title:          text(item.Title),
		Link:           text(item.Link),
		Description:    text(item.Description),
		Author:         text(item.Author),
		PublishedAtRaw: text(item.PubDate),
	}
	if r.PublishedAtRaw != nil {
		r.PublishedAt = ParseDate(*r.PublishedAtRaw)
	}
	return r
}

// ParseDate parses a <pubDate> value, returning nil when it does not match PubDateLayout.
func ParseDate(raw string) *time.Time {
	t, err := time.Parse(PubDateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

func text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
