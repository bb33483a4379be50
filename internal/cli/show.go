package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/document"
)

// showCommand creates the show command, which reads a previously exported
// JSON document and displays its metainfo.
func (c *CLI) showCommand() *cobra.Command {
	var (
		snippet int
		full    bool
	)

	cmd := &cobra.Command{
		Use:   "show <pdf-json-file>",
		Short: "Display metainfo from an exported JSON document",
		Long: `Display metainfo from an exported JSON document.

Reads a <name>.pdf.json file produced by parse and prints its metainfo
mapping. Documents without metainfo are shown as a raw JSON snippet.

Examples:
  pdfstruct show scratch/report.pdf.json
  pdfstruct show scratch/report.pdf.json --full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := document.ImportRaw(args[0])
			if err != nil {
				return err
			}

			printInfo("Document %s", StyleHighlight.Render(filepath.Base(args[0])))
			printNewline()

			if full {
				data, err := json.MarshalIndent(raw, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			if pairs, ok := raw.MetainfoPairs(); ok {
				printMetainfo(pairs)
				return nil
			}
			printWarning("No metainfo in document, showing raw JSON")
			fmt.Println(StyleDim.Render(raw.Snippet(snippet)))
			return nil
		},
	}

	cmd.Flags().IntVar(&snippet, "snippet", 500, "characters of raw JSON shown when metainfo is absent")
	cmd.Flags().BoolVar(&full, "full", false, "print the entire document JSON")

	return cmd
}
