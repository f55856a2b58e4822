package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matjam/wallfade/internal/ipc"
)

// NewNextCmd asks the running daemon to fade to the next image now.
func NewNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Fade to the next wallpaper now",
		Long: `Ask the running wallfade daemon to load the next image from its list and
start fading to it. The rotation timer restarts from the moment the command
is received. A fade already in progress continues from what is on screen.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := ipc.NewClient(ipc.SocketPath()).Next(); err != nil {
				log.Fatalf("Failed to send 'next' command: %v", err)
			}
			log.Info("Next wallpaper command sent")
		},
	}
}
