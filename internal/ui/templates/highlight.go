package templates

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	jsonLexer     = chroma.Coalesce(lexers.Get("json"))
	highlightHTML = chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(2))
)

// HighlightJSON pretty prints a JSON document and returns it as highlighted HTML.
// Invalid JSON is returned escaped in a plain <pre> block.
func HighlightJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return "<pre>" + templ.EscapeString(string(raw)) + "</pre>"
	}

	iterator, err := jsonLexer.Tokenise(nil, pretty.String())
	if err != nil {
		return "<pre>" + templ.EscapeString(pretty.String()) + "</pre>"
	}

	var out strings.Builder
	if err := highlightHTML.Format(&out, styles.Get("github"), iterator); err != nil {
		return "<pre>" + templ.EscapeString(pretty.String()) + "</pre>"
	}
	return out.String()
}
