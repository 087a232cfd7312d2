package lexer

import "strings"

// FrameKind identifies the bracket that opened a Frame.
type FrameKind int

const (
	Paren FrameKind = iota
	Bracket
	Brace
)

// Frame is one level of bracket nesting around a string literal.
type Frame struct {
	Kind FrameKind
	// Callee is the path written before the opening bracket, such as
	// "MenuItem::action", "t!", "log.Info" or, for braces, a struct type
	// name like "Menu". It is empty when no call or type precedes it.
	Callee string
	// ID is unique per frame within one file.
	ID int
	// Arg is the 1-based position of the current element in the frame.
	Arg int
}

// Site is a string literal together with the syntax around it.
type Site struct {
	Token Token
	// Frames holds the enclosing brackets, outermost first.
	Frames []Frame
	// Label is the field or keyword name bound to the literal
	// ("name: ..." or "title = ..."), if any.
	Label string
	// Comment joins the comments on the literal's line and the line above.
	Comment string
	// Prev and Next are the neighbouring non-comment tokens. Their Text is
	// empty at the edges of the file.
	Prev Token
	Next Token
}

// Top returns the innermost frame.
func (s Site) Top() (Frame, bool) {
	if len(s.Frames) == 0 {
		return Frame{}, false
	}
	return s.Frames[len(s.Frames)-1], true
}

// Call returns the innermost frame that is a named call or macro invocation.
func (s Site) Call() (Frame, bool) {
	for i := len(s.Frames) - 1; i >= 0; i-- {
		if f := s.Frames[i]; f.isCall() {
			return f, true
		}
	}
	return Frame{}, false
}

// Calls returns every named call frame, innermost first.
func (s Site) Calls() []Frame {
	var out []Frame
	for i := len(s.Frames) - 1; i >= 0; i-- {
		if f := s.Frames[i]; f.isCall() {
			out = append(out, f)
		}
	}
	return out
}

func (f Frame) isCall() bool {
	return f.Callee != "" && (f.Kind != Brace || strings.HasSuffix(f.Callee, "!"))
}

// Direct reports whether the literal is a whole argument or field value on
// its own, rather than one operand of a larger expression. A trailing
// method call ("x".into()) still counts as direct.
func (s Site) Direct() bool {
	switch s.Prev.Text {
	case "(", "[", "{", ",", ":", "=":
	default:
		return false
	}
	switch s.Next.Text {
	case ",", ")", "]", "}", ";", ".", "":
		return true
	}
	return false
}

var notCallees = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
	"match": true, "catch": true, "in": true, "and": true, "or": true,
	"not": true, "else": true, "elif": true, "loop": true, "unsafe": true,
	"async": true, "await": true, "move": true, "yield": true, "assert": true,
	"with": true,
}

var definers = map[string]bool{
	"fn": true, "func": true, "def": true, "function": true, "struct": true,
	"enum": true, "impl": true, "class": true, "trait": true, "mod": true,
	"interface": true, "type": true,
}

// Strings walks toks and returns every string literal with its context.
func Strings(toks []Token) []Site {
	sig := make([]int, 0, len(toks))
	// inline holds comments by the line they end on; above only those that
	// stand alone on their line and so annotate the line below.
	inline := make(map[int][]string)
	above := make(map[int][]string)
	for i, t := range toks {
		if t.Kind == Comment {
			last := t.Line + strings.Count(t.Text, "\n")
			if i == 0 || toks[i-1].Line+strings.Count(toks[i-1].Text, "\n") < t.Line {
				above[last] = append(above[last], t.Value)
			} else {
				inline[last] = append(inline[last], t.Value)
			}
			continue
		}
		sig = append(sig, i)
	}

	var (
		stack  []Frame
		nextID int
		sites  []Site
	)
	at := func(k int) Token {
		if k < 0 || k >= len(sig) {
			return Token{}
		}
		return toks[sig[k]]
	}

	for k := range sig {
		t := at(k)
		switch t.Kind {
		case String:
			site := Site{
				Token:  t,
				Frames: append([]Frame(nil), stack...),
				Label:  labelBefore(at, k),
				Prev:   at(k - 1),
				Next:   at(k + 1),
			}
			var notes []string
			notes = append(notes, above[t.Line-1]...)
			notes = append(notes, inline[t.Line]...)
			notes = append(notes, above[t.Line]...)
			site.Comment = strings.Join(notes, " ")
			sites = append(sites, site)

		case Punct:
			switch t.Text {
			case "(", "[", "{":
				nextID++
				f := Frame{ID: nextID, Arg: 1, Callee: calleeBefore(at, k)}
				switch t.Text {
				case "(":
					f.Kind = Paren
				case "[":
					f.Kind = Bracket
				default:
					f.Kind = Brace
				}
				stack = append(stack, f)
			case ")", "]", "}":
				want := map[string]FrameKind{")": Paren, "]": Bracket, "}": Brace}[t.Text]
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].Kind == want {
						stack = stack[:i]
						break
					}
				}
			case ",":
				if len(stack) > 0 {
					stack[len(stack)-1].Arg++
				}
			}
		}
	}
	return sites
}

// calleeBefore reconstructs the path written before the bracket at k.
func calleeBefore(at func(int) Token, k int) string {
	j := k - 1
	// Skip a turbofish or generic argument list: foo::<T>(
	if at(j).Text == ">" {
		depth := 0
		for ; j >= 0; j-- {
			switch at(j).Text {
			case ">":
				depth++
			case "<":
				depth--
			}
			if depth == 0 {
				break
			}
		}
		j--
		if at(j).Text == "::" {
			j--
		}
	}
	if at(j).Kind != Ident || at(j).Text == "" || notCallees[at(j).Text] {
		return ""
	}
	parts := []string{at(j).Text}
	for {
		sep := at(j - 1)
		if sep.Kind != Punct || (sep.Text != "::" && sep.Text != ".") {
			break
		}
		prev := at(j - 2)
		if prev.Kind != Ident || prev.Text == "" {
			break
		}
		parts = append([]string{prev.Text, sep.Text}, parts...)
		j -= 2
	}
	if definers[at(j-1).Text] {
		return ""
	}
	// Return type of a function body: fn build() -> Menu {
	if at(j-1).Text == ">" && at(j-2).Text == "-" {
		return ""
	}
	return strings.Join(parts, "")
}

// labelBefore returns the name in "name: <lit>" or "name = <lit>".
func labelBefore(at func(int) Token, k int) string {
	op, name := at(k-1), at(k-2)
	if op.Kind != Punct || name.Kind != Ident {
		return ""
	}
	switch op.Text {
	case ":":
		return name.Text
	case "=":
		// ==, != and friends put punctuation before the last '=', not a name.
		return name.Text
	}
	return ""
}
