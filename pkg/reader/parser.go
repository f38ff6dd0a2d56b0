package reader

import (
	"fmt"
	"strconv"

	"github.com/kajanen/lumilisp/pkg/values"
)

type parser struct {
	tokens []token
	pos    int
}

// Read tokenizes and parses src into a sequence of top-level Forms.
func Read(src string) ([]values.Value, error) {
	tokens, err := newTokenizer(src).tokenize()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	p := &parser{tokens: tokens}

	var forms []values.Value
	for p.peek().typ != tokEOF {
		f, err := p.parseForm()
		if err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// ReadOne parses exactly the first top-level Form in src and discards the
// rest. An input with no forms yields Nil.
func ReadOne(src string) (values.Value, error) {
	forms, err := Read(src)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return values.Nil{}, nil
	}
	return forms[0], nil
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) parseForm() (values.Value, error) {
	t := p.peek()
	switch t.typ {
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of input")
	case tokLParen:
		return p.parseList()
	case tokRParen:
		return nil, fmt.Errorf("unexpected ')' at line %d", t.line)
	case tokQuote:
		p.next()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return &values.Quoted{Form: inner}, nil
	case tokTilde:
		p.next()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return &values.Unquoted{Form: inner}, nil
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q at line %d", t.text, t.line)
		}
		return values.Int(n), nil
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q at line %d", t.text, t.line)
		}
		return values.Float(f), nil
	case tokString:
		p.next()
		return values.Str(t.text), nil
	case tokTrue:
		p.next()
		return values.Bool(true), nil
	case tokFalse:
		p.next()
		return values.Bool(false), nil
	case tokNil:
		p.next()
		return values.Nil{}, nil
	case tokSymbol:
		p.next()
		return values.Symbol(t.text), nil
	default:
		return nil, fmt.Errorf("unexpected token at line %d", t.line)
	}
}

func (p *parser) parseList() (values.Value, error) {
	p.next() // consume '('
	var elements []values.Value
	for {
		t := p.peek()
		if t.typ == tokEOF {
			return nil, fmt.Errorf("unterminated list starting before line %d", t.line)
		}
		if t.typ == tokRParen {
			p.next()
			break
		}
		elem, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
	return values.NewList(elements...), nil
}
