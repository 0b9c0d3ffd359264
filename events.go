package tmx

import (
	"encoding/xml"
	"io"
	"strings"
)

// EventKind is the kind of a tag event
type EventKind int

const (
	EventOpen EventKind = iota
	EventClose
	EventText
)

// Tag is an opening element. Name and attribute keys are upper case.
type Tag struct {
	Name  string
	Attrs map[string]string
}

// Event is one step of a document, as the parser sees it
type Event struct {
	Kind EventKind
	Tag  Tag    // set for EventOpen
	Text string // set for EventText
}

// EventSource yields the events of a single document, in order.
// Next returns io.EOF once the document has ended, any other error is a
// malformed document.
type EventSource interface {
	Next() (Event, error)
}

// xmlSource turns encoding/xml tokens into events.
type xmlSource struct {
	decoder *xml.Decoder
}

// NewXMLSource returns an EventSource reading XML from `r`
func NewXMLSource(r io.Reader) EventSource {
	return &xmlSource{decoder: xml.NewDecoder(r)}
}

// Next implements EventSource
func (s *xmlSource) Next() (Event, error) {
	for {
		token, err := s.decoder.Token()
		if err != nil {
			return Event{}, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[strings.ToUpper(a.Name.Local)] = a.Value
			}
			return Event{Kind: EventOpen, Tag: Tag{Name: strings.ToUpper(t.Name.Local), Attrs: attrs}}, nil
		case xml.EndElement:
			return Event{Kind: EventClose}, nil
		case xml.CharData:
			return Event{Kind: EventText, Text: string(t)}, nil
		default:
			// comments, processing instructions & directives aren't events
		}
	}
}
