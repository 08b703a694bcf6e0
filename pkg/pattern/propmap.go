package pattern

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/props"
	"github.com/duynguyendang/implica/pkg/typing"
)

// ParsePropLiteral parses a standalone property-map literal such as
// `{a: 1, b: "x"}`.
func ParsePropLiteral(src string) (map[string]props.Value, error) {
	return parsePropMap(src)
}

// parsePropMap parses the property-map literal:
//
//	propMap := '{' (ident ':' propLit (',' ident ':' propLit)*)? '}'
//	propLit := string | int | float | bool | 'null' | '[' propLit* ']' | propMap
func parsePropMap(src string) (map[string]props.Value, error) {
	p := &propParser{input: []rune(src)}
	m, err := p.parseMap()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.errorf("trailing input after property map")
	}
	return m, nil
}

type propParser struct {
	input []rune
	pos   int
}

func (p *propParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at position %d", errors.ErrSyntax, fmt.Sprintf(format, args...), p.pos)
}

func (p *propParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *propParser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *propParser) expect(r rune) error {
	p.skipSpace()
	if p.peek() != r {
		return p.errorf("expected %q", r)
	}
	p.pos++
	return nil
}

func (p *propParser) parseMap() (map[string]props.Value, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	m := make(map[string]props.Value)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return m, nil
	}
	for {
		key, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := typing.ValidateName(key); err != nil {
			return nil, fmt.Errorf("property key: %w", err)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		m[key] = val

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return m, nil
		default:
			return nil, p.errorf("expected ',' or '}' in property map")
		}
	}
}

func (p *propParser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(p.pos > start && r >= '0' && r <= '9') {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errorf("expected identifier")
	}
	return string(p.input[start:p.pos]), nil
}

func (p *propParser) parseValue() (props.Value, error) {
	p.skipSpace()
	switch r := p.peek(); {
	case r == '"':
		return p.parseString()
	case r == '{':
		return p.parseMap()
	case r == '[':
		return p.parseList()
	case r == '-' || (r >= '0' && r <= '9'):
		return p.parseNumber()
	default:
		word, err := p.parseIdent()
		if err != nil {
			return nil, p.errorf("expected property value")
		}
		switch word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		return nil, p.errorf("unexpected literal %q", word)
	}
}

func (p *propParser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		switch r {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", p.errorf("unterminated escape")
			}
			switch esc := p.input[p.pos]; esc {
			case '"', '\\':
				b.WriteRune(esc)
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				return "", p.errorf("unknown escape %q", esc)
			}
			p.pos++
		default:
			b.WriteRune(r)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *propParser) parseNumber() (props.Value, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if r >= '0' && r <= '9' {
			p.pos++
		} else if r == '.' || r == 'e' || r == 'E' || r == '+' || r == '-' {
			if r == '.' || r == 'e' || r == 'E' {
				isFloat = true
			}
			p.pos++
		} else {
			break
		}
	}
	text := string(p.input[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return i, nil
}

func (p *propParser) parseList() (props.Value, error) {
	p.pos++ // opening bracket
	var list []props.Value
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return list, nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, val)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return list, nil
		default:
			return nil, p.errorf("expected ',' or ']' in list")
		}
	}
}

// formatProps renders a property predicate in surface syntax, keys sorted
// for stable output.
func formatProps(m map[string]props.Value) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(formatValue(m[k]))
	}
	b.WriteString("}")
	return b.String()
}

func formatValue(v props.Value) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(vv)
	case bool:
		return strconv.FormatBool(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case int:
		return strconv.Itoa(vv)
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64)
	case []props.Value:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]props.Value:
		return formatProps(vv)
	}
	return fmt.Sprintf("%v", v)
}
