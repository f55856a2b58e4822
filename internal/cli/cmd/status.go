package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matjam/wallfade/internal/cli/cmd/utils"
	"github.com/matjam/wallfade/internal/ipc"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get wallfade status",
		Long:  `Returns the current status of the wallfade daemon.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.NewClient(ipc.SocketPath()).Status()
			if err != nil {
				log.Errorf("Error getting status: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
