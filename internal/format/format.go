// Package format converts plain answer text into a restricted, safe HTML
// vocabulary: h2/h3 headings, bold, italic, unordered lists, paragraphs,
// fenced code blocks and literal blocks. All input is treated as untrusted;
// anything that could smuggle markup through is escaped.
package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// literalDelimiter toggles a verbatim block when it is the whole trimmed line.
const literalDelimiter = "'''"

// defaultCodeLabel is used when a fence carries no language tag.
const defaultCodeLabel = "code"

var codeRe = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```|<code>(.*?)</code>")

type regionKind int

const (
	regionLiteral regionKind = iota
	regionCode
)

// region is an extracted verbatim payload, referenced from the node stream by
// index instead of an in-band placeholder so untrusted content can never
// collide with it.
type region struct {
	kind    regionKind
	lang    string
	content string
}

// node is one element of the token stream: either a text line or a reference
// to an extracted region.
type node struct {
	ref  int // region index, or -1 for a text line
	line string
}

// Render formats untrusted answer text into safe structured markup.
func Render(text string) string {
	nodes, regions := extractLiterals(text)
	nodes, regions = extractCode(nodes, regions)
	return renderNodes(nodes, regions)
}

// extractLiterals runs the first pass: lines between ''' delimiters are
// captured verbatim. An opened but never closed block swallows the rest of
// the input.
func extractLiterals(text string) ([]node, []region) {
	var (
		nodes   []node
		regions []region
		inside  bool
		block   []string
	)

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == literalDelimiter {
			if !inside {
				inside = true
				block = nil
				continue
			}
			inside = false
			regions = append(regions, region{kind: regionLiteral, content: strings.Join(block, "\n")})
			nodes = append(nodes, node{ref: len(regions) - 1})
			block = nil
			continue
		}
		if inside {
			block = append(block, line)
		} else {
			nodes = append(nodes, node{ref: -1, line: line})
		}
	}

	// Unterminated block: everything after the opener is its content.
	if inside && len(block) > 0 {
		regions = append(regions, region{kind: regionLiteral, content: strings.Join(block, "\n")})
		nodes = append(nodes, node{ref: len(regions) - 1})
	}

	return nodes, regions
}

// extractCode runs the second pass over the remaining text: fenced code
// blocks (```lang ... ```) and inline <code> tags become code regions.
// Literal regions from the first pass are opaque here, which makes the two
// passes order-independent.
func extractCode(nodes []node, regions []region) ([]node, []region) {
	var out []node

	flush := func(run []string) {
		joined := strings.Join(run, "\n")
		last := 0
		for _, m := range codeRe.FindAllStringSubmatchIndex(joined, -1) {
			for _, line := range strings.Split(joined[last:m[0]], "\n") {
				out = append(out, node{ref: -1, line: line})
			}
			regions = append(regions, codeRegion(joined, m))
			out = append(out, node{ref: len(regions) - 1})
			last = m[1]
		}
		for _, line := range strings.Split(joined[last:], "\n") {
			out = append(out, node{ref: -1, line: line})
		}
	}

	var run []string
	for _, n := range nodes {
		if n.ref >= 0 {
			if run != nil {
				flush(run)
				run = nil
			}
			out = append(out, n)
			continue
		}
		run = append(run, n.line)
	}
	if run != nil {
		flush(run)
	}

	return out, regions
}

// codeRegion builds a region from a regex match: groups 1/2 are the fenced
// form, group 3 the inline <code> form.
func codeRegion(text string, m []int) region {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	r := region{kind: regionCode, lang: group(1), content: group(2)}
	if m[2*3] >= 0 { // inline <code> form
		r.content = group(3)
	}
	if r.lang == "" {
		r.lang = defaultCodeLabel
	}
	return r
}

// renderNodes walks the token stream: inline markup and list grouping on
// text lines, container rendering for region references.
func renderNodes(nodes []node, regions []region) string {
	var (
		parts  []string
		inList bool
	)
	closeList := func() {
		if inList {
			parts = append(parts, "</ul>")
			inList = false
		}
	}

	for _, n := range nodes {
		if n.ref >= 0 {
			closeList()
			parts = append(parts, renderRegion(regions[n.ref]))
			continue
		}

		line := strings.TrimSpace(inlineMarkup(n.line))
		switch {
		case line == "":
			closeList()
		case strings.HasPrefix(line, "<h2>") || strings.HasPrefix(line, "<h3>"):
			closeList()
			parts = append(parts, line)
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•"):
			if !inList {
				parts = append(parts, "<ul>")
				inList = true
			}
			item := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "-"), "•"))
			parts = append(parts, "<li>"+item+"</li>")
		default:
			closeList()
			parts = append(parts, "<p>"+line+"</p>")
		}
	}
	closeList()

	return strings.Join(parts, "")
}

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
)

// inlineMarkup converts heading markers and emphasis spans on a single line,
// then escapes any '<' that does not open an allowed tag.
func inlineMarkup(line string) string {
	if rest, ok := strings.CutPrefix(line, "### "); ok {
		line = "<h3>" + rest + "</h3>"
	} else if rest, ok := strings.CutPrefix(line, "## "); ok {
		line = "<h2>" + rest + "</h2>"
	}
	line = boldRe.ReplaceAllString(line, "<strong>$1</strong>")
	line = italicRe.ReplaceAllString(line, "<em>$1</em>")
	return escapeUnsafeLT(line)
}

// renderRegion produces the container for an extracted region. Payloads are
// HTML-escaped so embedded markup can never execute.
func renderRegion(r region) string {
	switch r.kind {
	case regionCode:
		return fmt.Sprintf(
			`<div class="code-block-wrapper"><div class="code-block-header"><span class="code-language">%s</span><button class="code-copy-btn" data-action="copy">Copy</button></div><pre class="code-block"><code>%s</code></pre></div>`,
			html.EscapeString(r.lang), html.EscapeString(r.content))
	default:
		return fmt.Sprintf(`<div class="literal-block"><pre>%s</pre></div>`, html.EscapeString(r.content))
	}
}
