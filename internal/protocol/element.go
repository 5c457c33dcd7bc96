// Package protocol implements the XML room protocol spoken between client
// and game server: a generic element tree plus typed encoders and decoders
// for the messages of the 2020 game.
package protocol

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Element is an in-memory XML element: tag name, attributes, character data
// and child elements. The server's messages are small, so a tree
// representation is simpler to work with than streaming decoders.
type Element struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Element
}

// NewElement creates an element with the given tag name.
func NewElement(name string) *Element {
	return &Element{Name: name, Attrs: map[string]string{}}
}

// WithAttr sets an attribute and returns the element for chaining.
func (e *Element) WithAttr(key, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[key] = value
	return e
}

// WithText sets the character data and returns the element for chaining.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// WithChild appends a child element and returns the parent for chaining.
func (e *Element) WithChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return e
}

// Attr returns the value of the attribute with the given key.
func (e *Element) Attr(key string) (string, error) {
	if v, ok := e.Attrs[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("no attribute %q on <%s>", key, e.Name)
}

// AttrInt returns the integer value of the attribute with the given key.
func (e *Element) AttrInt(key string) (int, error) {
	raw, err := e.Attr(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("attribute %q on <%s>: %w", key, e.Name, err)
	}
	return v, nil
}

// AttrBool returns the boolean value of the attribute with the given key.
func (e *Element) AttrBool(key string) (bool, error) {
	raw, err := e.Attr(key)
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("attribute %q on <%s>: %w", key, e.Name, err)
	}
	return v, nil
}

// Child returns the first child with the given tag name.
func (e *Element) Child(name string) (*Element, error) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no <%s> inside <%s>", name, e.Name)
}

// ChildrenNamed returns all children with the given tag name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ErrStreamClosed is returned by ReadElement when the surrounding protocol
// stream is closed by the server.
var ErrStreamClosed = fmt.Errorf("protocol stream closed")

// ReadElement reads the next complete element from the decoder. It is meant
// to be called inside an open enclosing element (the <protocol> stream):
// encountering the enclosing end tag yields ErrStreamClosed.
func ReadElement(dec *xml.Decoder) (*Element, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, ErrStreamClosed
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return readInto(dec, t)
		case xml.EndElement:
			return nil, ErrStreamClosed
		default:
			// Skip whitespace, comments and processing instructions.
		}
	}
}

func readInto(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	e := NewElement(start.Name.Local)
	for _, a := range start.Attr {
		e.Attrs[a.Name.Local] = a.Value
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readInto(dec, t)
			if err != nil {
				return nil, err
			}
			e.Children = append(e.Children, child)
		case xml.EndElement:
			return e, nil
		case xml.CharData:
			e.Text += string(t)
		}
	}
}

// String renders the element as XML.
func (e *Element) String() string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

func (e *Element) render(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, key := range sortedKeys(e.Attrs) {
		sb.WriteByte(' ')
		sb.WriteString(key)
		sb.WriteString(`="`)
		xml.EscapeText(&escWriter{sb}, []byte(e.Attrs[key]))
		sb.WriteByte('"')
	}
	if e.Text == "" && len(e.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	if e.Text != "" {
		xml.EscapeText(&escWriter{sb}, []byte(e.Text))
	}
	for _, c := range e.Children {
		c.render(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteByte('>')
}

type escWriter struct{ sb *strings.Builder }

func (w *escWriter) Write(p []byte) (int, error) { return w.sb.Write(p) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
