package selector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
	yaml "gopkg.in/yaml.v3"
)

// Kind names the query language of a Selector.
type Kind string

const (
	XPath Kind = "xpath"
	CSS   Kind = "css"
)

// ErrEmpty is returned by Compile for a selector without an expression.
var ErrEmpty = errors.New("selector: empty expression")

// Selector is a structural query against a parsed HTML tree. Expressions may
// be relative to the node they are evaluated on (e.g. "./h2").
type Selector struct {
	Kind Kind
	Expr string

	xp *xpath.Expr
}

// MustXPath returns a compiled XPath selector and panics on a bad expression.
// Only meant for built-in layouts.
func MustXPath(expr string) Selector {
	s := Selector{Kind: XPath, Expr: expr}
	if err := s.Compile(); err != nil {
		panic(err)
	}
	return s
}

// MustCSS returns a validated CSS selector and panics on a bad expression.
func MustCSS(expr string) Selector {
	s := Selector{Kind: CSS, Expr: expr}
	if err := s.Compile(); err != nil {
		panic(err)
	}
	return s
}

// Compile validates the expression and caches the compiled form.
func (s *Selector) Compile() error {
	if strings.TrimSpace(s.Expr) == "" {
		return ErrEmpty
	}
	switch s.Kind {
	case XPath, "":
		s.Kind = XPath
		expr, err := xpath.Compile(s.Expr)
		if err != nil {
			return fmt.Errorf("selector: xpath %q: %w", s.Expr, err)
		}
		s.xp = expr
	case CSS:
		if _, err := cascadia.ParseGroup(s.Expr); err != nil {
			return fmt.Errorf("selector: css %q: %w", s.Expr, err)
		}
	default:
		return fmt.Errorf("selector: unknown kind %q", s.Kind)
	}
	return nil
}

// All returns every node matching the selector under n, in document order.
// An uncompilable selector matches nothing.
func (s Selector) All(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	switch s.Kind {
	case CSS:
		return goquery.NewDocumentFromNode(n).Find(s.Expr).Nodes
	default:
		if s.xp == nil {
			if err := s.Compile(); err != nil {
				return nil
			}
		}
		return htmlquery.QuerySelectorAll(n, s.xp)
	}
}

// First returns the first match under n, or nil.
func (s Selector) First(n *html.Node) *html.Node {
	nodes := s.All(n)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (s Selector) String() string {
	return string(s.Kind) + ":" + s.Expr
}

// Text returns the concatenated text of n and its descendants, trimmed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// Attr returns the value of attribute name on n and whether it was present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// UnmarshalYAML accepts either a bare string (XPath) or a single-key mapping
// {xpath: ...} / {css: ...}.
func (s *Selector) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = Selector{Kind: XPath, Expr: value.Value}
	case yaml.MappingNode:
		var m map[string]string
		if err := value.Decode(&m); err != nil {
			return err
		}
		parsed, err := fromMap(m)
		if err != nil {
			return err
		}
		*s = parsed
	default:
		return fmt.Errorf("selector: line %d: expected string or mapping", value.Line)
	}
	return s.Compile()
}

// UnmarshalJSON mirrors UnmarshalYAML for JSON config files.
func (s *Selector) UnmarshalJSON(b []byte) error {
	var expr string
	if err := json.Unmarshal(b, &expr); err == nil {
		*s = Selector{Kind: XPath, Expr: expr}
		return s.Compile()
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("selector: expected string or object: %w", err)
	}
	parsed, err := fromMap(m)
	if err != nil {
		return err
	}
	*s = parsed
	return s.Compile()
}

func fromMap(m map[string]string) (Selector, error) {
	if len(m) != 1 {
		return Selector{}, fmt.Errorf("selector: expected exactly one of xpath/css, got %d keys", len(m))
	}
	for k, v := range m {
		switch Kind(strings.ToLower(k)) {
		case XPath:
			return Selector{Kind: XPath, Expr: v}, nil
		case CSS:
			return Selector{Kind: CSS, Expr: v}, nil
		default:
			return Selector{}, fmt.Errorf("selector: unknown kind %q", k)
		}
	}
	return Selector{}, ErrEmpty
}
