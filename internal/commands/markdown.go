package commands

import (
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown turns command help markdown into plain terminal text:
// headings upper-cased, list items bulleted or numbered, code blocks
// indented, and link targets printed after the link text.
func RenderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(src))

	r := &textRenderer{}
	ast.WalkFunc(doc, r.visit)
	return strings.TrimRight(r.b.String(), "\n") + "\n"
}

type textRenderer struct {
	b       strings.Builder
	depth   int
	ordinal []int
}

func (r *textRenderer) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Heading:
		if !entering {
			r.b.WriteString("\n\n")
		}
	case *ast.Paragraph:
		if !entering {
			if inListItem(n) {
				r.b.WriteString("\n")
			} else {
				r.b.WriteString("\n\n")
			}
		}
	case *ast.List:
		if entering {
			r.depth++
			r.ordinal = append(r.ordinal, 0)
		} else {
			r.depth--
			r.ordinal = r.ordinal[:len(r.ordinal)-1]
			if r.depth == 0 {
				r.b.WriteString("\n")
			}
		}
	case *ast.ListItem:
		if entering {
			r.b.WriteString(strings.Repeat("  ", r.depth-1))
			if n.ListFlags&ast.ListTypeOrdered != 0 {
				r.ordinal[len(r.ordinal)-1]++
				r.b.WriteString(strconv.Itoa(r.ordinal[len(r.ordinal)-1]) + ". ")
			} else {
				r.b.WriteString("• ")
			}
		} else if !strings.HasSuffix(r.b.String(), "\n") {
			r.b.WriteString("\n")
		}
	case *ast.CodeBlock:
		for _, line := range strings.Split(strings.TrimRight(string(n.Literal), "\n"), "\n") {
			r.b.WriteString("    " + line + "\n")
		}
		r.b.WriteString("\n")
	case *ast.Code:
		r.b.Write(n.Literal)
	case *ast.Text:
		text := strings.ReplaceAll(string(n.Literal), "\n", " ")
		if _, ok := n.GetParent().(*ast.Heading); ok {
			text = strings.ToUpper(text)
		}
		r.b.WriteString(text)
	case *ast.Softbreak:
		r.b.WriteString(" ")
	case *ast.Hardbreak:
		r.b.WriteString("\n")
	case *ast.Link:
		if !entering {
			r.b.WriteString(" (" + string(n.Destination) + ")")
		}
	case *ast.HorizontalRule:
		r.b.WriteString(strings.Repeat("─", 40) + "\n\n")
	}
	return ast.GoToNext
}

func inListItem(n ast.Node) bool {
	_, ok := n.GetParent().(*ast.ListItem)
	return ok
}
