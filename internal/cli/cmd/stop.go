package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matjam/wallfade/internal/ipc"
)

// NewStopCmd asks the running daemon to shut down.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Shut down the running wallfade daemon",
		Long: `Ask the running wallfade daemon to release its textures, close the display
connection and exit. With the x11 backend the last image stays installed as
the root window background.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := ipc.NewClient(ipc.SocketPath()).Stop(); err != nil {
				log.Fatalf("Failed to send 'stop' command: %v", err)
			}
			log.Info("Stop command sent")
		},
	}
}
