package scan

import (
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/minios-linux/i18nkit/classify"
	"github.com/minios-linux/i18nkit/lexer"
)

type fileResult struct {
	findings []Finding
	ignored  []Ignored
	skip     *SkipError
}

var errNotText = errors.New("not valid UTF-8 text")

func scanFile(root, rel string, o Options) fileResult {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fileResult{skip: &SkipError{File: rel, Err: err}}
	}
	if !utf8.Valid(data) {
		return fileResult{skip: &SkipError{File: rel, Err: errNotText}}
	}
	d, ok := lexer.ForFile(rel)
	if !ok {
		d = lexer.CLike
	}
	toks, err := lexer.Tokenize(data, d)
	if err != nil {
		return fileResult{skip: &SkipError{File: rel, Err: err}}
	}
	return extract(rel, lexer.Strings(toks), o)
}

// extract turns the string sites of one file into findings.
func extract(rel string, sites []lexer.Site, o Options) fileResult {
	group := GroupFor(rel, o.GroupNoise)

	// Direct string arguments by frame and position, for default texts.
	args := map[int]map[int]string{}
	for _, s := range sites {
		top, ok := s.Top()
		if !ok || top.Callee == "" || !s.Direct() {
			continue
		}
		if args[top.ID] == nil {
			args[top.ID] = map[int]string{}
		}
		args[top.ID][top.Arg] = s.Token.Value
	}

	var out fileResult
	for _, s := range sites {
		pos := Pos{File: rel, Line: s.Token.Line, Col: s.Token.Col}

		if kw, top, ok := keyArgument(s, o.Keywords); ok {
			f := Finding{Kind: CallSiteKey, Key: s.Token.Value, Pos: pos, Group: group, Callee: top.Callee}
			if kw.DefaultArg > 0 {
				f.Text = args[top.ID][kw.DefaultArg]
			}
			out.findings = append(out.findings, f)
			continue
		}
		if o.NoLiterals {
			continue
		}

		ctx := classify.Context{Label: s.Label, Comment: s.Comment}
		for _, c := range s.Calls() {
			ctx.Calls = append(ctx.Calls, c.Callee)
			for _, kw := range o.Keywords {
				if kw.Matches(c.Callee) {
					ctx.InTranslationCall = true
				}
			}
		}
		res := o.Policy.Classify(s.Token.Value, ctx)
		if !res.Translatable {
			if o.Explain {
				out.ignored = append(out.ignored, Ignored{Pos: pos, Text: s.Token.Value, Reason: res.Reason})
			}
			continue
		}
		var callee string
		if len(ctx.Calls) > 0 {
			callee = ctx.Calls[0]
		}
		out.findings = append(out.findings, Finding{
			Kind:       LiteralCandidate,
			Text:       s.Token.Value,
			Pos:        pos,
			Group:      group,
			Callee:     callee,
			Confidence: res.Confidence,
		})
	}
	return out
}

// keyArgument reports whether the site is the key argument of a keyword call.
func keyArgument(s lexer.Site, kws []Keyword) (Keyword, lexer.Frame, bool) {
	top, ok := s.Top()
	if !ok || top.Callee == "" || !s.Direct() {
		return Keyword{}, lexer.Frame{}, false
	}
	if top.Kind == lexer.Brace && !isMacro(top.Callee) {
		return Keyword{}, lexer.Frame{}, false
	}
	for _, kw := range kws {
		if kw.Matches(top.Callee) && top.Arg == kw.KeyArg {
			return kw, top, true
		}
	}
	return Keyword{}, lexer.Frame{}, false
}

func isMacro(callee string) bool {
	return len(callee) > 0 && callee[len(callee)-1] == '!'
}
