package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvillar/pbitdoc"
	"github.com/lvillar/pbitdoc/document"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output      string
		author      string
		letterhead  string
		fingerprint bool
		pageNumbers bool
		compress    bool
	)

	cmd := &cobra.Command{
		Use:   "render <file.pbit>",
		Short: "Render a .pbit template to PDF",
		Long: `Render a .pbit template to PDF.

Without --output the PDF is written next to the input, named by replacing
".pbit" with "_erd_final.pdf".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("author") {
				a.cfg.Author = author
			}
			if flags.Changed("letterhead") {
				a.cfg.Letterhead = letterhead
			}
			if flags.Changed("fingerprint-qr") {
				a.cfg.FingerprintQR = fingerprint
			}
			if flags.Changed("page-numbers") {
				a.cfg.PageNumbers = pageNumbers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			opts := a.cfg.ProcessOptions(a.logger)
			if flags.Changed("compress") {
				opts = append(opts, pbitdoc.WithRenderOptions(document.WithCompression(compress)))
			}

			res, err := pbitdoc.Process(cmd.Context(), data, filepath.Base(in), opts...)
			if err != nil {
				return fmt.Errorf("%s: %s", in, pbitdoc.Message(err))
			}

			if output == "" {
				output = defaultOutputPath(in)
			}
			if err := os.WriteFile(output, res.PDF, 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %d tables, %d relationships\n",
				output, res.Pages, len(res.Model.Tables), len(res.Model.Relationships))
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path")
	cmd.Flags().StringVar(&author, "author", "", "PDF author metadata (overrides PBITDOC_AUTHOR)")
	cmd.Flags().StringVar(&letterhead, "letterhead", "", "PDF whose first page backs the title page (overrides PBITDOC_LETTERHEAD)")
	cmd.Flags().BoolVar(&fingerprint, "fingerprint-qr", false, "print the schema fingerprint as a QR code")
	cmd.Flags().BoolVar(&pageNumbers, "page-numbers", true, "add page number footers")
	cmd.Flags().BoolVar(&compress, "compress", true, "compress page streams")
	return cmd
}

// defaultOutputPath applies the suggested name to the base of in. A name the
// suggestion leaves unchanged gets a ".pdf" suffix so the input is never
// overwritten.
func defaultOutputPath(in string) string {
	base := filepath.Base(in)
	name := pbitdoc.OutputFilename(base)
	if name == base {
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
		if name == base {
			name = base + ".pdf"
		}
	}
	return filepath.Join(filepath.Dir(in), name)
}
