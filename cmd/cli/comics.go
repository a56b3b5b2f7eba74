package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"comicshelf/pkg/models"
)

func newListCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed comics",
		Long: `Lists every indexed comic. The server rescans its library first, so new
archives show up right away.

Prints a table on a terminal and JSON otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.client().listComics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(out, items)
			}
			_, err = fmt.Fprintln(out, comicsTable(items))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	return cmd
}

func comicsTable(items []models.ComicRecord) string {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.Title,
			strconv.Itoa(c.PageCount),
			humanize.Time(c.AddedAt),
			c.ID,
		})
	}
	return renderTable([]string{"Title", "Pages", "Added", "ID"}, rows, 2)
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one comic record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.client().getComic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newPageCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "page <id> <n>",
		Short: "Download one page (zero-based)",
		Example: `  # save page 0 as <id>-000.<ext>
  comicshelf page 3f2a... 0

  # pipe a page into a viewer
  comicshelf page 3f2a... 4 -o - | feh -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("page number %q: %w", args[1], err)
			}

			data, ext, err := opts.client().getPage(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s-%03d%s", args[0], n, ext)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%s)\n", output, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	return cmd
}

func newPagesCmd(opts *options) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "pages <id>",
		Short: "Download every page of a comic into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			rec, err := client.getComic(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = rec.Title
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			bar := progressbar.NewOptions(rec.PageCount,
				progressbar.OptionSetDescription(rec.Title),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprint(cmd.ErrOrStderr(), "\n")
				}),
				progressbar.OptionSetRenderBlankState(true),
			)

			saved, err := downloadPages(cmd.Context(), client, rec.ID, outDir, func() { _ = bar.Add(1) })
			if err != nil {
				return err
			}
			_ = bar.Finish()
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %d pages to %s\n", saved, outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: the comic title)")
	return cmd
}

// downloadPages fetches pages until the server runs out of them. The stored
// page count only sizes the progress bar; the archive may have changed.
func downloadPages(ctx context.Context, client *apiClient, id, dir string, onPage func()) (int, error) {
	for n := 0; ; n++ {
		data, ext, err := client.getPage(ctx, id, n)
		if errors.Is(err, errNoSuchPage) {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%03d%s", n, ext)), data, 0o644); err != nil {
			return n, err
		}
		onPage()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
