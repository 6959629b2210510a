package enrich

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements that break the text flow; each inserts a line
// break so the stripped output keeps paragraph structure.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true,
	"ol": true, "tr": true, "table": true, "section": true,
	"article": true, "header": true, "footer": true,
	"blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// StripHTML reduces an HTML document to plain text: script and style
// content is dropped, block-level tags become line breaks and entities
// are decoded by the tokenizer.
func StripHTML(doc string) string {
	tok := html.NewTokenizer(strings.NewReader(doc))

	var b strings.Builder
	skipDepth := 0

	for {
		switch tok.Next() {
		case html.ErrorToken:
			out := blankLines.ReplaceAllString(b.String(), "\n\n")
			return strings.TrimSpace(out)

		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(string(tok.Text()))
			}

		case html.StartTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipDepth++
			} else if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			} else if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.SelfClosingTagToken:
			name, _ := tok.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}
