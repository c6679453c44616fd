package ron

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Parse errors.
var (
	ErrEmptyDocument   = errors.New("ron: empty document")
	ErrTrailingContent = errors.New("ron: trailing content after value")
	ErrUnexpectedEOF   = errors.New("ron: unexpected end of input")
)

const (
	tokenIdent = iota
	tokenInt
	tokenFloat
	tokenString
	tokenRawString
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenLBrace
	tokenRBrace
	tokenColon
	tokenComma
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`r#"([^"]|"[^#])*"?"#`), getToken(tokenRawString))
	lexer.Add([]byte(`r"[^"]*"`), getToken(tokenRawString))
	lexer.Add([]byte(`"(\\.|[^"\\])*"`), getToken(tokenString))
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(tokenIdent))
	lexer.Add([]byte(`0x[0-9a-fA-F_]+`), getToken(tokenInt))
	lexer.Add([]byte(`[\+\-]?[0-9][0-9_]*\.[0-9]*([eE][\+\-]?[0-9]+)?`), getToken(tokenFloat))
	lexer.Add([]byte(`[\+\-]?[0-9][0-9_]*[eE][\+\-]?[0-9]+`), getToken(tokenFloat))
	lexer.Add([]byte(`[\+\-]?[0-9][0-9_]*`), getToken(tokenInt))
	lexer.Add([]byte(`\(`), getToken(tokenLParen))
	lexer.Add([]byte(`\)`), getToken(tokenRParen))
	lexer.Add([]byte(`\[`), getToken(tokenLBracket))
	lexer.Add([]byte(`\]`), getToken(tokenRBracket))
	lexer.Add([]byte(`\{`), getToken(tokenLBrace))
	lexer.Add([]byte(`\}`), getToken(tokenRBrace))
	lexer.Add([]byte(`:`), getToken(tokenColon))
	lexer.Add([]byte(`,`), getToken(tokenComma))
	lexer.Add([]byte(`//[^\n]*`), skip)
	lexer.Add([]byte(`\s+`), skip)
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// Parse parses a single RON value from text. Anything but whitespace and
// comments after the value is an error.
func Parse(text []byte) (Value, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, ErrEmptyDocument
	}
	p := &parser{toks: toks}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil {
		return nil, fmt.Errorf("%w: line %d (%q)", ErrTrailingContent, t.StartLine, t.Lexeme)
	}
	return v, nil
}

func tokenize(text []byte) ([]*lexmachine.Token, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, fmt.Errorf("ron: creating scanner: %w", err)
	}
	var toks []*lexmachine.Token
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			return nil, fmt.Errorf("ron: lexing: %w", err)
		}
		if tok == nil {
			continue
		}
		toks = append(toks, tok.(*lexmachine.Token))
	}
	return toks, nil
}

type parser struct {
	toks []*lexmachine.Token
	pos  int
}

func (p *parser) peek() *lexmachine.Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return p.toks[p.pos]
}

// peek2 returns the token after the next one, if any.
func (p *parser) peek2() *lexmachine.Token {
	if p.pos+1 >= len(p.toks) {
		return nil
	}
	return p.toks[p.pos+1]
}

func (p *parser) next() *lexmachine.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *parser) expect(tokenType int, what string) (*lexmachine.Token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("%w: expected %s", ErrUnexpectedEOF, what)
	}
	if t.Type != tokenType {
		return nil, fmt.Errorf("ron: line %d: expected %s, got %q", t.StartLine, what, t.Lexeme)
	}
	return t, nil
}

func (p *parser) parseValue() (Value, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("%w: expected value", ErrUnexpectedEOF)
	}
	switch t.Type {
	case tokenString:
		s, err := unquote(t.Value.(string))
		if err != nil {
			return nil, fmt.Errorf("ron: line %d: %w", t.StartLine, err)
		}
		return String(s), nil
	case tokenRawString:
		return String(stripRaw(t.Value.(string))), nil
	case tokenInt:
		s := strings.ReplaceAll(t.Value.(string), "_", "")
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			// Out-of-range values like 0xFFFFFFFF_FFFFFFFF are not used by
			// any of the game's files.
			return nil, fmt.Errorf("ron: line %d: bad integer %q: %w", t.StartLine, s, err)
		}
		return Int(n), nil
	case tokenFloat:
		s := strings.ReplaceAll(t.Value.(string), "_", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("ron: line %d: bad float %q: %w", t.StartLine, s, err)
		}
		return Float(f), nil
	case tokenIdent:
		name := t.Value.(string)
		switch name {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		if nt := p.peek(); nt != nil && nt.Type == tokenLParen {
			p.next()
			return p.parseStructBody(name)
		}
		return Ident(name), nil
	case tokenLParen:
		return p.parseStructBody("")
	case tokenLBracket:
		return p.parseList()
	case tokenLBrace:
		return p.parseMap()
	default:
		return nil, fmt.Errorf("ron: line %d: unexpected token %q", t.StartLine, t.Lexeme)
	}
}

// parseStructBody parses the contents of a struct after the opening paren.
// The named-field form is detected by an identifier followed by a colon;
// everything else is the positional tuple form.
func (p *parser) parseStructBody(name string) (Value, error) {
	if t := p.peek(); t != nil && t.Type == tokenRParen {
		p.next()
		return Struct{Name: name}, nil
	}
	if t, t2 := p.peek(), p.peek2(); t != nil && t.Type == tokenIdent && t2 != nil && t2.Type == tokenColon {
		return p.parseFields(name)
	}
	return p.parseItems(name)
}

func (p *parser) parseFields(name string) (Value, error) {
	s := Struct{Name: name}
	for {
		ft, err := p.expect(tokenIdent, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon, "':'"); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, Field{Name: ft.Value.(string), Value: v})
		done, err := p.separator(tokenRParen, "')'")
		if err != nil {
			return nil, err
		}
		if done {
			return s, nil
		}
	}
}

func (p *parser) parseItems(name string) (Value, error) {
	s := Struct{Name: name}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, v)
		done, err := p.separator(tokenRParen, "')'")
		if err != nil {
			return nil, err
		}
		if done {
			return s, nil
		}
	}
}

func (p *parser) parseList() (Value, error) {
	list := List{}
	if t := p.peek(); t != nil && t.Type == tokenRBracket {
		p.next()
		return list, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
		done, err := p.separator(tokenRBracket, "']'")
		if err != nil {
			return nil, err
		}
		if done {
			return list, nil
		}
	}
}

func (p *parser) parseMap() (Value, error) {
	m := Map{}
	if t := p.peek(); t != nil && t.Type == tokenRBrace {
		p.next()
		return m, nil
	}
	for {
		k, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon, "':'"); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		m = append(m, MapEntry{Key: k, Value: v})
		done, err := p.separator(tokenRBrace, "'}'")
		if err != nil {
			return nil, err
		}
		if done {
			return m, nil
		}
	}
}

// separator consumes either a comma (optionally followed by the closing
// token) or the closing token itself. It reports whether the collection is
// finished. Trailing commas are accepted.
func (p *parser) separator(closing int, what string) (bool, error) {
	t := p.next()
	if t == nil {
		return false, fmt.Errorf("%w: expected ',' or %s", ErrUnexpectedEOF, what)
	}
	switch t.Type {
	case closing:
		return true, nil
	case tokenComma:
		if nt := p.peek(); nt != nil && nt.Type == closing {
			p.next()
			return true, nil
		}
		return false, nil
	default:
		return false, fmt.Errorf("ron: line %d: expected ',' or %s, got %q", t.StartLine, what, t.Lexeme)
	}
}

func stripRaw(lexeme string) string {
	if strings.HasPrefix(lexeme, `r#"`) {
		return strings.TrimSuffix(strings.TrimPrefix(lexeme, `r#"`), `"#`)
	}
	return strings.TrimSuffix(strings.TrimPrefix(lexeme, `r"`), `"`)
}

// unquote decodes an escaped string literal. Unlike strconv.Unquote it
// allows literal newlines, which RON permits inside quoted strings.
func unquote(lexeme string) (string, error) {
	body := lexeme[1 : len(lexeme)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New("dangling escape in string literal")
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		case 'u':
			// \u{XXXX}
			if i+1 >= len(body) || body[i+1] != '{' {
				return "", errors.New("malformed unicode escape")
			}
			end := strings.IndexByte(body[i+1:], '}')
			if end < 0 {
				return "", errors.New("unterminated unicode escape")
			}
			hex := body[i+2 : i+1+end]
			n, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape %q", hex)
			}
			b.WriteRune(rune(n))
			i += 1 + end
		default:
			return "", fmt.Errorf("unknown escape \\%c", body[i])
		}
	}
	return b.String(), nil
}
