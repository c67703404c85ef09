package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/zbysir/mermaidinit"
	"github.com/zbysir/mermaidinit/pkg/markdown"
)

func newScanCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <input>...",
		Short: "List the diagram source blocks an activation would convert",
		Long: `scan runs discovery only. Files without diagram blocks list every code
block with its class so a missing language-mermaid class is easy to spot.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := o.setup(cmd); err != nil {
				return err
			}
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}

			md := markdown.New()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, in := range inputs {
				doc, err := loadDocument(md, in)
				if err != nil {
					return err
				}
				blocks := mermaidinit.Discover(doc)
				fmt.Fprintf(w, "%s\t%d diagram blocks\n", in, blocks.Length())
				if blocks.Length() > 0 {
					continue
				}
				for _, b := range mermaidinit.ListCodeBlocks(doc) {
					fmt.Fprintf(w, "  #%d\tclass=%q\t%s\n", b.Index, b.Class, b.Preview)
				}
			}
			return w.Flush()
		},
	}
}

func loadDocument(md *markdown.Converter, in string) (*goquery.Document, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isMarkdown(in) {
		return goquery.NewDocumentFromReader(f)
	}
	src, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	page, err := md.Convert(src)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
}
