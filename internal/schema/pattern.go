package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/randsrc"
)

// Pattern is a compiled bounded regex-like grammar, per spec.md §4.1:
// character classes, bounded repetition, and alternation are supported;
// unbounded "*"/"+" are rejected at compile time. None of the example
// corpus's dependencies offer this kind of bounded-string generator, so it
// is implemented directly over the standard library (see DESIGN.md).
type Pattern struct {
	root patNode
	src  string
}

type patNode interface {
	generate(s *randsrc.Source, out *strings.Builder)
}

type patLiteral rune

func (n patLiteral) generate(_ *randsrc.Source, out *strings.Builder) {
	out.WriteRune(rune(n))
}

type patRange struct{ lo, hi rune }

type patClass struct {
	ranges []patRange
	negate bool
}

func (n patClass) generate(s *randsrc.Source, out *strings.Builder) {
	// Negated classes are expanded to the printable ASCII range minus the
	// excluded runes at compile time (see parseClass), so generate only
	// ever sees a concrete, enumerable rune set here.
	total := int64(0)
	for _, r := range n.ranges {
		total += int64(r.hi-r.lo) + 1
	}
	if total <= 0 {
		out.WriteRune('?')
		return
	}
	pick := s.IntRange(0, total)
	for _, r := range n.ranges {
		width := int64(r.hi-r.lo) + 1
		if pick < width {
			out.WriteRune(r.lo + rune(pick))
			return
		}
		pick -= width
	}
}

type patConcat []patNode

func (n patConcat) generate(s *randsrc.Source, out *strings.Builder) {
	for _, c := range n {
		c.generate(s, out)
	}
}

type patAlt []patNode

func (n patAlt) generate(s *randsrc.Source, out *strings.Builder) {
	if len(n) == 0 {
		return
	}
	i := s.IntRange(0, int64(len(n)))
	n[i].generate(s, out)
}

type patRepeat struct {
	inner    patNode
	min, max int
}

func (n patRepeat) generate(s *randsrc.Source, out *strings.Builder) {
	count := n.min
	if n.max > n.min {
		count = n.min + int(s.IntRange(0, int64(n.max-n.min+1)))
	}
	for i := 0; i < count; i++ {
		n.inner.generate(s, out)
	}
}

// Cardinality returns the number of distinct strings the pattern can
// produce, counting each alternation branch separately. The count is always
// finite, since unbounded repetition is rejected at compile time.
func (p *Pattern) Cardinality() int64 {
	return cardinalityOf(p.root)
}

func cardinalityOf(n patNode) int64 {
	switch v := n.(type) {
	case patLiteral:
		return 1
	case patClass:
		var total int64
		for _, r := range v.ranges {
			total += int64(r.hi-r.lo) + 1
		}
		return total
	case patConcat:
		total := int64(1)
		for _, c := range v {
			total = saturatingMul(total, cardinalityOf(c))
		}
		return total
	case patAlt:
		var total int64
		for _, c := range v {
			total += cardinalityOf(c)
		}
		return total
	case patRepeat:
		inner := cardinalityOf(v.inner)
		var total int64
		for count := v.min; count <= v.max; count++ {
			total = saturatingAdd(total, intPow(inner, count))
		}
		return total
	default:
		return 1
	}
}

// saturatingMul and saturatingAdd clamp at MaxInt64 instead of overflowing;
// feasibility checks only need to know "astronomically large", not the exact
// figure.
func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	const maxInt64 = 1<<63 - 1
	if a > maxInt64/b {
		return maxInt64
	}
	return a * b
}

func saturatingAdd(a, b int64) int64 {
	const maxInt64 = 1<<63 - 1
	if a > maxInt64-b {
		return maxInt64
	}
	return a + b
}

func intPow(base int64, exp int) int64 {
	result := int64(1)
	for i := 0; i < exp; i++ {
		result = saturatingMul(result, base)
	}
	return result
}

// Generate draws one matching string from the pattern.
func (p *Pattern) Generate(s *randsrc.Source) string {
	var out strings.Builder
	p.root.generate(s, &out)
	return out.String()
}

// CompilePattern parses and compiles a bounded regex-like pattern.
func CompilePattern(src string) (*Pattern, error) {
	p := &patParser{src: src}
	node, err := p.parseAlt()
	if err != nil {
		return nil, errkit.Configuration("", "pattern %q: %v", src, err)
	}
	if p.pos != len(src) {
		return nil, errkit.Configuration("", "pattern %q: unexpected %q at position %d", src, src[p.pos], p.pos)
	}
	return &Pattern{root: node, src: src}, nil
}

type patParser struct {
	src string
	pos int
}

func (p *patParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *patParser) parseAlt() (patNode, error) {
	var branches patAlt
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	branches = append(branches, first)
	for {
		c, ok := p.peek()
		if !ok || c != '|' {
			break
		}
		p.pos++
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		branches = append(branches, next)
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return branches, nil
}

func (p *patParser) parseConcat() (patNode, error) {
	var seq patConcat
	for {
		c, ok := p.peek()
		if !ok || c == '|' || c == ')' {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		seq = append(seq, term)
	}
	return seq, nil
}

func (p *patParser) parseTerm() (patNode, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	c, ok := p.peek()
	if !ok {
		return atom, nil
	}
	switch c {
	case '?':
		p.pos++
		return patRepeat{inner: atom, min: 0, max: 1}, nil
	case '*', '+':
		return nil, fmt.Errorf("unbounded repetition %q is not allowed; use {n,m}", string(c))
	case '{':
		min, max, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		return patRepeat{inner: atom, min: min, max: max}, nil
	}
	return atom, nil
}

func (p *patParser) parseBounds() (int, int, error) {
	p.pos++ // consume '{'
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return 0, 0, fmt.Errorf("unterminated {} repetition")
		}
		if c == '}' {
			break
		}
		p.pos++
	}
	body := p.src[start:p.pos]
	p.pos++ // consume '}'

	parts := strings.SplitN(body, ",", 2)
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid repetition bound %q", body)
	}
	max := min
	if len(parts) == 2 {
		trimmed := strings.TrimSpace(parts[1])
		if trimmed == "" {
			return 0, 0, fmt.Errorf("unbounded repetition {%s,} is not allowed", parts[0])
		}
		max, err = strconv.Atoi(trimmed)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid repetition bound %q", body)
		}
	}
	if max < min {
		return 0, 0, fmt.Errorf("repetition bound {%d,%d} has max < min", min, max)
	}
	return min, max, nil
}

func (p *patParser) parseAtom() (patNode, error) {
	c, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of pattern")
	}
	switch c {
	case '(':
		p.pos++
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		c, ok = p.peek()
		if !ok || c != ')' {
			return nil, fmt.Errorf("unterminated group")
		}
		p.pos++
		return inner, nil
	case '[':
		return p.parseClass()
	case '\\':
		p.pos++
		c, ok = p.peek()
		if !ok {
			return nil, fmt.Errorf("dangling escape")
		}
		p.pos++
		return patLiteral(rune(c)), nil
	default:
		p.pos++
		return patLiteral(rune(c)), nil
	}
}

func (p *patParser) parseClass() (patNode, error) {
	p.pos++ // consume '['
	cls := patClass{}
	if c, ok := p.peek(); ok && c == '^' {
		cls.negate = true
		p.pos++
	}
	for {
		c, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unterminated character class")
		}
		if c == ']' {
			p.pos++
			break
		}
		lo := rune(c)
		p.pos++
		if c2, ok := p.peek(); ok && c2 == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] != ']' {
			p.pos++ // consume '-'
			hi := rune(p.src[p.pos])
			p.pos++
			if hi < lo {
				return nil, fmt.Errorf("invalid range %c-%c", lo, hi)
			}
			cls.ranges = append(cls.ranges, patRange{lo: lo, hi: hi})
		} else {
			cls.ranges = append(cls.ranges, patRange{lo: lo, hi: lo})
		}
	}
	if cls.negate {
		cls.ranges = negateRanges(cls.ranges)
		cls.negate = false
	}
	return cls, nil
}

// negateRanges expands a negated class over the printable ASCII range
// (0x20-0x7e), since the engine only ever needs to emit printable text.
func negateRanges(excluded []patRange) []patRange {
	excludedSet := make(map[rune]bool)
	for _, r := range excluded {
		for c := r.lo; c <= r.hi; c++ {
			excludedSet[c] = true
		}
	}
	var out []patRange
	var runStart rune = -1
	for c := rune(0x20); c <= 0x7e; c++ {
		if excludedSet[c] {
			if runStart >= 0 {
				out = append(out, patRange{lo: runStart, hi: c - 1})
				runStart = -1
			}
			continue
		}
		if runStart < 0 {
			runStart = c
		}
	}
	if runStart >= 0 {
		out = append(out, patRange{lo: runStart, hi: 0x7e})
	}
	return out
}
