package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReviveScripts swaps every script element below roots for a fresh copy and
// hands the copies to the document's ScriptRunner. Parsed scripts are inert
// until re-inserted this way.
func (d *Document) ReviveScripts(roots ...*html.Node) int {
	var scripts []*html.Node
	for _, r := range roots {
		if IsElement(r, "script") {
			scripts = append(scripts, r)
			continue
		}
		scripts = append(scripts, QueryAll(r, "script")...)
	}

	revived := 0
	for _, s := range scripts {
		if !d.Contains(s) {
			continue
		}
		fresh := &html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
			Attr:     append([]html.Attribute(nil), s.Attr...),
		}
		if text := TextContent(s); text != "" {
			fresh.AppendChild(NewText(text))
		}
		d.ReplaceWith(s, fresh)
		revived++
		if d.scripts != nil {
			d.scripts(d, fresh)
		}
	}
	return revived
}
