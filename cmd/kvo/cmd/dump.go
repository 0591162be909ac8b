package cmd

import (
	"bytes"
	"fmt"

	"github.com/atdiar/kvo"
	"github.com/spf13/cobra"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func newDumpCmd() *cobra.Command {
	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "dump prints the loaded document.",
		Long: `
		dump loads FILE into a graph and prints it back as yaml, json or html.
		The html form nests objects as description lists and collections as
		ordered lists, each tagged with its graph id.
		`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := kvo.NewGraph()
			root, err := loadDocument(g, args[0])
			if err != nil {
				return err
			}
			var data []byte
			if format == "html" {
				var s string
				s, err = renderHTML(root)
				data = []byte(s + "\n")
			} else {
				data, err = encode(format, kvo.Plain(root))
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	dumpCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json or html")
	return dumpCmd
}

// IDAttrName holds the graph id of the object or collection a node renders.
const IDAttrName = "data-kvo-id"

func renderHTML(v any) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, newHTMLTree(v)); err != nil {
		return "", err
	}
	return gohtml.Format(buf.String()), nil
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func newHTMLTree(v any) *html.Node {
	switch t := v.(type) {
	case *kvo.Object:
		n := newElement(atom.Dl)
		n.Attr = append(n.Attr, html.Attribute{Key: IDAttrName, Val: t.ID()})
		for _, k := range t.Keys() {
			dt := newElement(atom.Dt)
			dt.AppendChild(&html.Node{Type: html.TextNode, Data: k})
			n.AppendChild(dt)

			val, _ := t.Get(k)
			dd := newElement(atom.Dd)
			dd.AppendChild(newHTMLTree(val))
			n.AppendChild(dd)
		}
		return n
	case *kvo.Collection:
		n := newElement(atom.Ol)
		n.Attr = append(n.Attr, html.Attribute{Key: IDAttrName, Val: t.ID()})
		for _, item := range t.Items() {
			li := newElement(atom.Li)
			li.AppendChild(newHTMLTree(item))
			n.AppendChild(li)
		}
		return n
	case []any:
		n := newElement(atom.Ol)
		for _, item := range t {
			li := newElement(atom.Li)
			li.AppendChild(newHTMLTree(item))
			n.AppendChild(li)
		}
		return n
	case nil:
		return &html.Node{Type: html.TextNode, Data: "null"}
	}
	return &html.Node{Type: html.TextNode, Data: fmt.Sprint(v)}
}
