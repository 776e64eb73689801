package recipe

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vk/recipego/internal/registry"
)

// Parse reads an XML recipe document and returns the immutable build model.
//
// Parsing performs structural validation only: the root element must be
// <build>, every step needs a unique id and at least one action, onerror
// values must be within the allowed enumeration, every action element must
// resolve to a registered handler, and action-specific required attributes
// must be present. Variable references in attribute values are left
// untouched; they are expanded lazily at execution time.
//
// Action namespaces may be declared as full URIs in the conventional
// .../tools/<ns> form or used as bare prefixes; either way the last path
// segment is the registry namespace token, so sh:exec resolves identically
// under xmlns:sh="http://example.com/tools/sh" and without any
// declaration at all.
func Parse(r io.Reader, reg *registry.Registry) (*Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}

	p := &parser{
		dec:   xml.NewDecoder(bytes.NewReader(data)),
		lines: newLineIndex(data),
		reg:   reg,
	}
	return p.parse()
}

type parser struct {
	dec   *xml.Decoder
	lines lineIndex
	reg   *registry.Registry
}

func (p *parser) parse() (*Recipe, error) {
	rcp := &Recipe{}
	stepIDs := make(map[string]struct{})
	seenRoot := false

	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SyntaxError{Line: p.line(), Msg: err.Error()}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !seenRoot {
			if start.Name.Local != "build" || start.Name.Space != "" {
				return nil, &SyntaxError{Line: p.line(), Msg: "root element must be <build>"}
			}
			for _, attr := range start.Attr {
				if isNamespaceDecl(attr) {
					continue
				}
				switch attr.Name.Local {
				case "description":
					rcp.Description = attr.Value
				case "onerror":
					policy := OnError(attr.Value)
					if !policy.Valid() {
						return nil, &SyntaxError{Line: p.line(), Msg: fmt.Sprintf("invalid onerror value %q, must be one of fail, continue, ignore", attr.Value)}
					}
					rcp.OnError = policy
				}
			}
			seenRoot = true
			continue
		}

		if start.Name.Local != "step" || start.Name.Space != "" {
			return nil, &SyntaxError{Line: p.line(), Msg: fmt.Sprintf("only <step> elements allowed at top level of recipe, got <%s>", start.Name.Local)}
		}

		step, err := p.parseStep(start)
		if err != nil {
			return nil, err
		}
		if _, dup := stepIDs[step.ID]; dup {
			return nil, &SyntaxError{Line: step.Line, Msg: fmt.Sprintf("duplicate step id %q", step.ID)}
		}
		stepIDs[step.ID] = struct{}{}
		rcp.Steps = append(rcp.Steps, step)
	}

	if !seenRoot {
		return nil, &SyntaxError{Msg: "missing root element"}
	}
	if len(rcp.Steps) == 0 {
		return nil, &SyntaxError{Msg: "recipe defines no build steps"}
	}
	return rcp, nil
}

// parseStep consumes one <step> subtree, the start element already read.
func (p *parser) parseStep(start xml.StartElement) (*Step, error) {
	step := &Step{Line: p.line()}
	for _, attr := range start.Attr {
		if isNamespaceDecl(attr) {
			continue
		}
		switch attr.Name.Local {
		case "id":
			step.ID = attr.Value
		case "description":
			step.Description = attr.Value
		case "onerror":
			policy := OnError(attr.Value)
			if !policy.Valid() {
				return nil, &SyntaxError{Line: step.Line, Msg: fmt.Sprintf("invalid onerror value %q, must be one of fail, continue, ignore", attr.Value)}
			}
			step.OnError = policy
		}
	}
	if step.ID == "" {
		return nil, &SyntaxError{Line: step.Line, Msg: `steps must have an "id" attribute`}
	}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, &SyntaxError{Line: p.line(), Msg: err.Error()}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			action, err := p.parseAction(t)
			if err != nil {
				return nil, err
			}
			step.Actions = append(step.Actions, action)
		case xml.EndElement:
			if len(step.Actions) == 0 {
				return nil, &SyntaxError{Line: step.Line, Msg: fmt.Sprintf("step %q has no actions", step.ID)}
			}
			return step, nil
		}
	}
}

// parseAction consumes one action subtree, validating it against the
// registry. Action elements carry attributes only; nested elements are a
// syntax error.
func (p *parser) parseAction(start xml.StartElement) (*Action, error) {
	line := p.line()
	if start.Name.Space == "" {
		return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("action element <%s> has no namespace", start.Name.Local)}
	}

	action := &Action{
		Namespace: namespaceToken(start.Name.Space),
		Name:      start.Name.Local,
		Attrs:     make(map[string]string),
		Line:      line,
	}

	registered, ok := p.reg.Lookup(action.Namespace, action.Name)
	if !ok {
		return nil, &UnknownActionError{Namespace: action.Namespace, Name: action.Name, Line: line}
	}

	for _, attr := range start.Attr {
		if isNamespaceDecl(attr) {
			continue
		}
		action.Attrs[attr.Name.Local] = attr.Value
	}
	for _, required := range registered.Required {
		if _, ok := action.Attrs[required]; !ok {
			return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("action <%s> missing required attribute %q", action.QName(), required)}
		}
	}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, &SyntaxError{Line: p.line(), Msg: err.Error()}
		}
		switch tok.(type) {
		case xml.StartElement:
			return nil, &SyntaxError{Line: p.line(), Msg: fmt.Sprintf("action <%s> has nested content", action.QName())}
		case xml.EndElement:
			return action, nil
		}
	}
}

// line is the 1-based line of the decoder's current position.
func (p *parser) line() int {
	return p.lines.at(p.dec.InputOffset())
}

// isNamespaceDecl reports whether an attribute is an xmlns declaration
// rather than recipe data.
func isNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns"
}

// namespaceToken reduces a namespace URI to its registry token: the last
// path segment for URI-style declarations, the value itself otherwise.
func namespaceToken(space string) string {
	if i := strings.LastIndex(space, "/"); i >= 0 {
		return space[i+1:]
	}
	return space
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	var idx lineIndex
	for i, b := range data {
		if b == '\n' {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l lineIndex) at(offset int64) int {
	return sort.Search(len(l), func(i int) bool { return int64(l[i]) >= offset }) + 1
}
