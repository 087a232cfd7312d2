// Package lexer splits source text into the few token kinds the scanners
// need: identifiers, string literals, comments and punctuation.
//
// It is not a parser. Languages are described by a Dialect (comment markers,
// quote styles, raw string forms) so that one pass can serve Rust, Go,
// C-family, JavaScript/TypeScript and Python sources. The only hard failures
// are unterminated strings and block comments; everything else is tokenized
// leniently.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	Ident Kind = iota
	String
	Char
	Number
	Comment
	Punct
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case String:
		return "string"
	case Char:
		return "char"
	case Number:
		return "number"
	case Comment:
		return "comment"
	case Punct:
		return "punct"
	}
	return "unknown"
}

// Token is a single lexical element.
type Token struct {
	Kind Kind
	// Text is the raw source text of the token.
	Text string
	// Value is the decoded content of a String token or the body of a Comment.
	Value string
	// Line and Col are 1-based; Col counts bytes.
	Line int
	Col  int
	// Start and End are byte offsets into the source, End exclusive.
	Start int
	End   int
}

// Error reports a region that could not be tokenized.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Tokenize splits src according to dialect d.
func Tokenize(src []byte, d Dialect) ([]Token, error) {
	lx := &lexer{src: string(src), d: d, line: 1, lineStart: 0}
	return lx.run()
}

type lexer struct {
	src       string
	d         Dialect
	pos       int
	line      int
	lineStart int
	toks      []Token
}

func (lx *lexer) col(off int) int { return off - lx.lineStart + 1 }

func (lx *lexer) errorf(off int, format string, args ...any) error {
	return &Error{Line: lx.line, Col: lx.col(off), Msg: fmt.Sprintf(format, args...)}
}

// advance moves pos to off, keeping line bookkeeping in sync.
func (lx *lexer) advance(off int) {
	for i := lx.pos; i < off; i++ {
		if lx.src[i] == '\n' {
			lx.line++
			lx.lineStart = i + 1
		}
	}
	lx.pos = off
}

func (lx *lexer) emit(kind Kind, start, end int, value string, line, col int) {
	lx.toks = append(lx.toks, Token{
		Kind:  kind,
		Text:  lx.src[start:end],
		Value: value,
		Line:  line,
		Col:   col,
		Start: start,
		End:   end,
	})
}

func (lx *lexer) run() ([]Token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		start, line, col := lx.pos, lx.line, lx.col(lx.pos)

		switch {
		case c == '\n' || c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.advance(lx.pos + 1)

		case lx.lineComment() != "":
			marker := lx.lineComment()
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end < 0 {
				end = len(lx.src)
			} else {
				end += lx.pos
			}
			body := strings.TrimSpace(lx.src[lx.pos+len(marker) : end])
			lx.advance(end)
			lx.emit(Comment, start, end, body, line, col)

		case lx.d.BlockOpen != "" && strings.HasPrefix(lx.src[lx.pos:], lx.d.BlockOpen):
			end, err := lx.blockComment()
			if err != nil {
				return nil, err
			}
			body := strings.TrimSpace(lx.src[start+len(lx.d.BlockOpen) : end-len(lx.d.BlockClose)])
			lx.advance(end)
			lx.emit(Comment, start, end, body, line, col)

		case lx.d.TripleQuotes && (strings.HasPrefix(lx.src[lx.pos:], `"""`) || strings.HasPrefix(lx.src[lx.pos:], `'''`)):
			if err := lx.tripleString(lx.pos, false); err != nil {
				return nil, err
			}

		case c == '"' || (c == '\'' && strings.ContainsRune(lx.d.Quotes, '\'')):
			if err := lx.quoted(lx.pos, c, false); err != nil {
				return nil, err
			}

		case c == '\'' && lx.d.CharLiterals:
			lx.charOrQuote()

		case c == '`' && (lx.d.RawBacktick || lx.d.TemplateBacktick):
			end := strings.IndexByte(lx.src[lx.pos+1:], '`')
			if end < 0 {
				return nil, lx.errorf(lx.pos, "unterminated raw string")
			}
			end += lx.pos + 2
			value := lx.src[start+1 : end-1]
			lx.advance(end)
			lx.emit(String, start, end, value, line, col)

		case isIdentStart(c) || c >= utf8.RuneSelf:
			if ok, err := lx.prefixedString(); ok || err != nil {
				if err != nil {
					return nil, err
				}
				continue
			}
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if c >= utf8.RuneSelf && !unicode.IsLetter(r) {
				// Stray non-ASCII symbol outside a literal.
				lx.advance(lx.pos + size)
				lx.emit(Punct, start, lx.pos, "", line, col)
				continue
			}
			lx.ident()

		case c >= '0' && c <= '9':
			end := lx.pos + 1
			for end < len(lx.src) && (isIdentPart(lx.src[end]) || lx.src[end] == '.') {
				end++
			}
			lx.advance(end)
			lx.emit(Number, start, end, "", line, col)

		case c == ':' && strings.HasPrefix(lx.src[lx.pos:], "::"):
			lx.advance(lx.pos + 2)
			lx.emit(Punct, start, lx.pos, "", line, col)

		default:
			lx.advance(lx.pos + 1)
			lx.emit(Punct, start, lx.pos, "", line, col)
		}
	}
	return lx.toks, nil
}

func (lx *lexer) lineComment() string {
	for _, m := range lx.d.LineComments {
		if strings.HasPrefix(lx.src[lx.pos:], m) {
			return m
		}
	}
	return ""
}

// blockComment returns the end offset of the block comment starting at pos.
func (lx *lexer) blockComment() (int, error) {
	open, closing := lx.d.BlockOpen, lx.d.BlockClose
	depth := 0
	i := lx.pos
	for i < len(lx.src) {
		switch {
		case strings.HasPrefix(lx.src[i:], open) && (depth == 0 || lx.d.NestedComments):
			depth++
			i += len(open)
		case strings.HasPrefix(lx.src[i:], closing):
			depth--
			i += len(closing)
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return 0, lx.errorf(lx.pos, "unterminated block comment")
}

// quoted scans an escaped string opened by quote at off. When raw is set
// backslashes are literal.
func (lx *lexer) quoted(off int, quote byte, raw bool) error {
	start, line, col := lx.pos, lx.line, lx.col(lx.pos)
	i := off + 1
	for i < len(lx.src) {
		c := lx.src[i]
		switch {
		case c == '\\' && !raw:
			i += 2
			continue
		case c == '\n' && !lx.d.MultilineStrings:
			return lx.errorf(start, "newline in string literal")
		case c == quote:
			body := lx.src[off+1 : i]
			value := body
			if !raw {
				value = Unescape(body, lx.d.LineContinuationTrim)
			}
			lx.advance(i + 1)
			lx.emit(String, start, lx.pos, value, line, col)
			return nil
		}
		i++
	}
	return lx.errorf(start, "unterminated string literal")
}

func (lx *lexer) tripleString(off int, raw bool) error {
	start, line, col := lx.pos, lx.line, lx.col(lx.pos)
	delim := lx.src[off : off+3]
	i := off + 3
	for i < len(lx.src) {
		if lx.src[i] == '\\' && !raw {
			i += 2
			continue
		}
		if strings.HasPrefix(lx.src[i:], delim) {
			body := lx.src[off+3 : i]
			value := body
			if !raw {
				value = Unescape(body, false)
			}
			lx.advance(i + 3)
			lx.emit(String, start, lx.pos, value, line, col)
			return nil
		}
		i++
	}
	return lx.errorf(start, "unterminated string literal")
}

// rustRaw scans r"..." / r#"..."# starting at the opening '"' or '#' (off).
func (lx *lexer) rustRaw(off int) error {
	start, line, col := lx.pos, lx.line, lx.col(lx.pos)
	hashes := 0
	for off+hashes < len(lx.src) && lx.src[off+hashes] == '#' {
		hashes++
	}
	open := off + hashes
	if open >= len(lx.src) || lx.src[open] != '"' {
		return lx.errorf(start, "malformed raw string")
	}
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(lx.src[open+1:], closing)
	if end < 0 {
		return lx.errorf(start, "unterminated raw string")
	}
	end += open + 1
	value := lx.src[open+1 : end]
	lx.advance(end + len(closing))
	lx.emit(String, start, lx.pos, value, line, col)
	return nil
}

// prefixedString handles string prefixes such as Rust r"..", b"..", br#".."#
// and Python r"..", f"..", rb"..". It reports whether a string was consumed.
func (lx *lexer) prefixedString() (bool, error) {
	n := 0
	for n < 3 && lx.pos+n < len(lx.src) && isIdentStart(lx.src[lx.pos+n]) {
		n++
	}
	if n == 0 || lx.pos+n >= len(lx.src) {
		return false, nil
	}
	prefix := strings.ToLower(lx.src[lx.pos : lx.pos+n])
	next := lx.src[lx.pos+n]

	switch {
	case lx.d.RustRaw && (prefix == "r" || prefix == "br") && (next == '"' || next == '#'):
		// r#ident is a raw identifier, not a string.
		if next == '#' {
			j := lx.pos + n
			for j < len(lx.src) && lx.src[j] == '#' {
				j++
			}
			if j >= len(lx.src) || lx.src[j] != '"' {
				return false, nil
			}
		}
		return true, lx.rustRaw(lx.pos + n)
	case lx.d.RustRaw && prefix == "b" && next == '"':
		return true, lx.quoted(lx.pos+n, '"', false)
	case lx.d.StringPrefixes != "" && isPythonPrefix(prefix, lx.d.StringPrefixes) && (next == '"' || next == '\''):
		raw := strings.ContainsRune(prefix, 'r')
		if strings.HasPrefix(lx.src[lx.pos+n:], `"""`) || strings.HasPrefix(lx.src[lx.pos+n:], `'''`) {
			return true, lx.tripleString(lx.pos+n, raw)
		}
		return true, lx.quoted(lx.pos+n, next, raw)
	}
	return false, nil
}

func isPythonPrefix(prefix, allowed string) bool {
	for _, r := range prefix {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

// charOrQuote scans a character literal, or emits a lone quote (Rust
// lifetimes and labels) when no closing quote follows closely.
func (lx *lexer) charOrQuote() {
	start, line, col := lx.pos, lx.line, lx.col(lx.pos)
	i := lx.pos + 1
	if i < len(lx.src) && lx.src[i] == '\\' {
		if end := strings.IndexByte(lx.src[i:min(i+12, len(lx.src))], '\''); end > 0 {
			lx.advance(i + end + 1)
			lx.emit(Char, start, lx.pos, "", line, col)
			return
		}
	} else if i < len(lx.src) {
		_, size := utf8.DecodeRuneInString(lx.src[i:])
		if i+size < len(lx.src) && lx.src[i+size] == '\'' && lx.src[i] != '\n' {
			lx.advance(i + size + 1)
			lx.emit(Char, start, lx.pos, "", line, col)
			return
		}
	}
	lx.advance(lx.pos + 1)
	lx.emit(Punct, start, lx.pos, "", line, col)
}

func (lx *lexer) ident() {
	start, line, col := lx.pos, lx.line, lx.col(lx.pos)
	i := lx.pos
	for i < len(lx.src) {
		c := lx.src[i]
		if c < utf8.RuneSelf {
			if !isIdentPart(c) && !(c == '$' && lx.d.DollarIdents) {
				break
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(lx.src[i:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	// Rust macro invocation: name!( name![ name!{ but not name != x.
	if lx.d.MacroBang && i+1 < len(lx.src) && lx.src[i] == '!' && lx.src[i+1] != '=' {
		i++
	}
	lx.advance(i)
	lx.emit(Ident, start, i, "", line, col)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Unescape decodes backslash escapes in a string literal body. Unknown
// escapes keep the escaped character. When trimContinuation is set a
// backslash-newline also swallows the following indentation (Rust).
func Unescape(s string, trimContinuation bool) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\n':
			if trimContinuation {
				for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n' || s[i+1] == '\r') {
					i++
				}
			}
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case 'u', 'U':
			n, width := decodeUnicodeEscape(s[i:])
			if width > 0 {
				b.WriteRune(n)
				i += width - 1
				continue
			}
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeUnicodeEscape decodes u{...}, uXXXX or UXXXXXXXX at the start of s
// and returns the rune and the number of bytes consumed (0 on failure).
func decodeUnicodeEscape(s string) (rune, int) {
	if len(s) > 2 && s[1] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0
		}
		v, err := strconv.ParseUint(strings.ReplaceAll(s[2:end], "_", ""), 16, 32)
		if err != nil {
			return 0, 0
		}
		return rune(v), end + 1
	}
	digits := 4
	if s[0] == 'U' {
		digits = 8
	}
	if len(s) < digits+1 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[1:digits+1], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), digits + 1
}
