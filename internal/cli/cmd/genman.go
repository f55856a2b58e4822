package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewGenManCmd writes a section 1 man page for rootCmd and each of its
// subcommands.
func NewGenManCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "genman <output-dir>",
		Short: "Write wallfade man pages to a directory",
		Long: `Write one section 1 man page for wallfade and one for each subcommand
(wallfade-next, wallfade-load, ...) into output-dir, which must exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			header := &doc.GenManHeader{
				Title:   "WALLFADE",
				Section: "1",
			}
			return doc.GenManTree(rootCmd, header, filepath.Clean(dir))
		},
	}
}
