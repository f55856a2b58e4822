package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matjam/wallfade/internal/cli/cmd/utils"
	"github.com/matjam/wallfade/internal/ipc"
)

func NewLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [wallpaper1.jpg] [wallpaper2.png | directory] ...",
		Short: "Load a new list of wallpapers into the daemon",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			paths, err := utils.AbsPaths(args)
			if err != nil {
				log.Fatalf("Invalid path: %v", err)
			}
			if err := ipc.NewClient(ipc.SocketPath()).Load(paths); err != nil {
				log.Fatalf("Failed to send 'load' command: %v", err)
			}
			log.Infof("Loaded %d wallpapers", len(paths))
		},
	}
}
