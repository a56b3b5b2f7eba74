package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:3000"

type options struct {
	baseURL string
	timeout time.Duration
}

func (o *options) client() *apiClient {
	return &apiClient{
		baseURL: o.baseURL,
		http:    &http.Client{Timeout: o.timeout},
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "comicshelf",
		Short: "Browse a comicshelf server from the terminal",
		Long: `comicshelf talks to a running comicshelf API server.

It lists the indexed comics, downloads single pages or whole comics, and
follows the live feed of newly indexed archives.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if !cmd.Flags().Changed("api") {
				if v := os.Getenv("COMICSHELF_API"); v != "" {
					opts.baseURL = v
				}
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "api", defaultBaseURL, "API base URL (env COMICSHELF_API)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newPageCmd(opts),
		newPagesCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}
