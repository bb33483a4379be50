package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/store"
)

// recordsCommand creates the records command for inspecting past parse runs.
func (c *CLI) recordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect records of past parse runs",
		Long: `Inspect records of past parse runs.

Every successful parse writes a small record (input digest, page and block
counts, export formats) to a local store.

Examples:
  pdfstruct records list
  pdfstruct records get 3f8a...
  pdfstruct records delete 3f8a...`,
	}

	cmd.AddCommand(c.recordsListCommand())
	cmd.AddCommand(c.recordsGetCommand())
	cmd.AddCommand(c.recordsDeleteCommand())

	return cmd
}

func (c *CLI) recordsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewFileStore("")
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No records yet, run 'pdfstruct parse' first")
				return nil
			}
			for _, rec := range records {
				printKeyValue(rec.CreatedAt.Format("2006-01-02 15:04"), fmt.Sprintf(
					"%s  %s  %d pages, %d blocks  [%s]",
					StyleDim.Render(shortID(rec.ID)),
					rec.Filename,
					rec.PageCount,
					rec.BlockCount,
					strings.Join(rec.Formats, ","),
				))
			}
			printNewline()
			printDetail("%s records in %s", strconv.Itoa(len(records)), st.Path())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records to show (0 = all)")
	return cmd
}

func (c *CLI) recordsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewFileStore("")
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printKeyValue("id", rec.ID)
			printKeyValue("filename", rec.Filename)
			printKeyValue("input sha256", rec.InputSHA256)
			printKeyValue("document hash", rec.DocumentHash)
			printKeyValue("pages", strconv.Itoa(rec.PageCount))
			printKeyValue("blocks", strconv.Itoa(rec.BlockCount))
			printKeyValue("formats", strings.Join(rec.Formats, ", "))
			printKeyValue("ocr", strconv.FormatBool(rec.OCR))
			printKeyValue("created", rec.CreatedAt.Format("2006-01-02 15:04:05"))
			for _, p := range rec.OutputPaths {
				printFile(p)
			}
			return nil
		},
	}
}

func (c *CLI) recordsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewFileStore("")
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted record %s", shortID(args[0]))
			return nil
		},
	}
}

// shortID truncates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
