package parser

import (
	"strings"

	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/lexer"
	"github.com/antigravity-dev/wodcore/internal/resolver"
)

// Result is the product of parsing one script: the statement forest plus
// any non-fatal diagnostics collected along the way.
type Result struct {
	Forest      *fragment.Forest
	Diagnostics []Diagnostic
}

// Parse lexes and parses source into a fragment.Forest. It never returns an
// error: malformed input surfaces as Diagnostics and Text fragments. Every
// EffortFragment's ExerciseID is left nil; use ParseWithResolver to resolve
// exercise names against a resolver.ExerciseResolver at parse time.
func Parse(source string) Result {
	return parse(source, nil)
}

// ParseWithResolver parses source the same way as Parse, additionally
// consulting res to populate each EffortFragment's ExerciseID. A nil res
// behaves exactly like Parse.
func ParseWithResolver(source string, res resolver.ExerciseResolver) Result {
	return parse(source, res)
}

func parse(source string, res resolver.ExerciseResolver) Result {
	tokens := lexer.Lex(source)
	p := &parserState{forest: fragment.NewForest(), resolver: res}
	p.run(tokens)
	return Result{Forest: p.forest, Diagnostics: p.diagnostics}
}

type stackFrame struct {
	indent   int
	stmt     *fragment.Statement
	children []fragment.StatementID
}

type parserState struct {
	forest      *fragment.Forest
	diagnostics []Diagnostic
	nextID      fragment.StatementID
	stack       []stackFrame
	resolver    resolver.ExerciseResolver
}

func (p *parserState) run(tokens []lexer.Token) {
	lines := splitLines(tokens)
	for _, line := range lines {
		if len(line.tokens) == 0 {
			continue
		}
		p.popTo(line.indent)

		id := p.nextID + 1
		p.nextID = id
		stmt := fragment.NewStatement(id)
		meta := fragment.Meta{Line: line.tokens[0].Line, Column: line.tokens[0].Column}
		stmt.SetMeta(meta)

		for _, f := range p.parseLineFragments(line.tokens) {
			stmt.PushFragment(f)
		}

		if len(p.stack) > 0 {
			parent := &p.stack[len(p.stack)-1]
			stmt.SetParent(parent.stmt.ID())
			parent.children = append(parent.children, id)
		}

		p.stack = append(p.stack, stackFrame{indent: line.indent, stmt: stmt})
	}
	p.popTo(-1)
}

// popTo finalizes every open frame whose indent is >= indentWidth (or all
// frames, if indentWidth is -1), in innermost-first order.
func (p *parserState) popTo(indentWidth int) {
	for len(p.stack) > 0 && p.stack[len(p.stack)-1].indent >= indentWidth {
		frame := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if len(frame.children) > 0 {
			frame.stmt.AddChildGroup(frame.children)
		}
		frame.stmt.Finish()
		p.forest.Add(frame.stmt)
	}
}

type sourceLine struct {
	indent int
	tokens []lexer.Token
}

func splitLines(tokens []lexer.Token) []sourceLine {
	var lines []sourceLine
	var current []lexer.Token
	indent := 0

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, sourceLine{indent: indent, tokens: current})
		}
		current = nil
		indent = 0
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.KindIndent:
			indent = tok.IndentWidth
		case lexer.KindNewline:
			flush()
		case lexer.KindEOF:
			flush()
		default:
			current = append(current, tok)
		}
	}
	flush()
	return lines
}

// parseLineFragments converts one line's tokens into Fragments, in order.
func (p *parserState) parseLineFragments(tokens []lexer.Token) []fragment.Fragment {
	var out []fragment.Fragment
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch tok.Kind {
		case lexer.KindGroupOpen:
			f, consumed := p.parseGroup(tokens[i:])
			out = append(out, f)
			i += consumed
		case lexer.KindActionOpen:
			f, consumed := p.parseAction(tokens[i:])
			out = append(out, f)
			i += consumed
		case lexer.KindTimerLiteral:
			out = append(out, fragment.NewTimerFragment(metaOf(tok), uint64(tok.NumberValue), tok.Text))
			i++
		case lexer.KindAt:
			if i+2 < len(tokens) && tokens[i+1].Kind == lexer.KindNumber && tokens[i+2].Kind == lexer.KindWeightUnit {
				out = append(out, fragment.NewResistanceFragment(metaOf(tokens[i+1]), tokens[i+1].NumberValue, fragment.ResistanceUnit(tokens[i+2].Text)))
				i += 3
			} else {
				p.diag(tok, "stray '@' with no following weighted number")
				i++
			}
		case lexer.KindNumber:
			if i+1 < len(tokens) && tokens[i+1].Kind == lexer.KindWeightUnit {
				out = append(out, fragment.NewResistanceFragment(metaOf(tok), tok.NumberValue, fragment.ResistanceUnit(tokens[i+1].Text)))
				i += 2
			} else if i+1 < len(tokens) && tokens[i+1].Kind == lexer.KindDistanceUnit {
				out = append(out, fragment.NewDistanceFragment(metaOf(tok), tok.NumberValue, fragment.DistanceUnit(tokens[i+1].Text)))
				i += 2
			} else {
				out = append(out, fragment.NewRepFragment(metaOf(tok), uint32(tok.NumberValue)))
				i++
			}
		case lexer.KindCaret:
			out = append(out, fragment.NewIncrementFragment(metaOf(tok), fragment.DirectionUp))
			i++
		case lexer.KindIdentifier:
			words, consumed := collectIdentifierRun(tokens[i:])
			raw := strings.Join(words, " ")
			var exerciseID *string
			if p.resolver != nil {
				id := p.resolver.Resolve(raw)
				exerciseID = &id
			}
			out = append(out, fragment.NewEffortFragment(metaOf(tok), raw, exerciseID))
			i += consumed
		case lexer.KindDash, lexer.KindPlus:
			p.diag(tok, "unexpected '"+tok.Text+"' outside a group or rep scheme")
			i++
		case lexer.KindText:
			out = append(out, fragment.NewTextFragment(metaOf(tok), tok.Text))
			p.diag(tok, "unrecognized character '"+tok.Text+"'")
			i++
		case lexer.KindGroupClose, lexer.KindActionClose:
			p.diag(tok, "unexpected '"+tok.Text+"'")
			i++
		default:
			i++
		}
	}
	return out
}

// parseGroup consumes a "(" ... ")" span, returning a RoundsFragment and the
// number of tokens consumed (including both parens). If the group is never
// closed, it consumes the rest of the line and emits a diagnostic.
func (p *parserState) parseGroup(tokens []lexer.Token) (fragment.Fragment, int) {
	open := tokens[0]
	var numbers []uint32
	i := 1
	closed := false
	for i < len(tokens) {
		switch tokens[i].Kind {
		case lexer.KindGroupClose:
			closed = true
			i++
		case lexer.KindNumber:
			numbers = append(numbers, uint32(tokens[i].NumberValue))
			i++
			continue
		default:
			i++
			continue
		}
		if closed {
			break
		}
	}
	if !closed {
		p.diag(open, "unterminated group starting with '('")
	}

	var total *uint32
	var scheme *fragment.RepSchemeFragment
	switch len(numbers) {
	case 0:
		// unbounded group, e.g. "()"
	case 1:
		v := numbers[0]
		total = &v
	default:
		s := fragment.NewRepSchemeFragment(metaOf(open), numbers)
		scheme = &s
	}
	return fragment.NewRoundsFragment(metaOf(open), total, scheme), i
}

// parseAction consumes a "[:" ... "]" span, returning an ActionFragment and
// the number of tokens consumed.
func (p *parserState) parseAction(tokens []lexer.Token) (fragment.Fragment, int) {
	open := tokens[0]
	var words []string
	i := 1
	closed := false
	for i < len(tokens) {
		if tokens[i].Kind == lexer.KindActionClose {
			closed = true
			i++
			break
		}
		words = append(words, tokens[i].Text)
		i++
	}
	if !closed {
		p.diag(open, "unterminated action starting with '[:'")
	}
	return fragment.NewActionFragment(metaOf(open), strings.Join(words, " ")), i
}

// collectIdentifierRun greedily joins consecutive Identifier tokens (the
// effort rule is "multi-word, greedy, non-conflicting"), stopping at the
// first token that is not an Identifier.
func collectIdentifierRun(tokens []lexer.Token) ([]string, int) {
	var words []string
	i := 0
	for i < len(tokens) && tokens[i].Kind == lexer.KindIdentifier {
		words = append(words, tokens[i].Text)
		i++
	}
	return words, i
}

func (p *parserState) diag(tok lexer.Token, message string) {
	p.diagnostics = append(p.diagnostics, Diagnostic{Line: tok.Line, Column: tok.Column, Message: message})
}

func metaOf(tok lexer.Token) fragment.Meta {
	return fragment.Meta{Line: tok.Line, Column: tok.Column, Length: len(tok.Text)}
}
