/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matjam/wallfade"
	"github.com/matjam/wallfade/internal/cli/cmd"
	"github.com/matjam/wallfade/internal/cli/cmd/utils"
	"github.com/matjam/wallfade/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wallfade [directory]",
	Short: "A wallpaper changer with smooth cross-fades",
	Long: `Wallfade cycles through the images in a directory, cross-fading
from one wallpaper to the next. It renders with OpenGL by default and can
fall back to blending on the CPU onto the X11 root window.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			settings, err := config.FromViper(viper.GetViper())
			if err != nil {
				log.Fatalf("Invalid configuration: %v", err)
			}
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(settings)
			return
		}

		if v, err := c.Flags().GetBool("version"); err == nil && v {
			printVersion()
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			if err := utils.InstallDefaultConfig(); err != nil {
				log.Fatalf("Error installing config file: %v", err)
			}
			return
		}

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}

		if v, err := c.Flags().GetBool("background"); err == nil && v && !daemon.WasReborn() {
			if !background() {
				return
			}
		}
		cmd.StartDaemon(dir)
	},
}

func printVersion() {
	babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	log.Infof("%v version %v © 2025 %v",
		babyBlue.Render("wallfade "),
		green.Render(strings.TrimSpace(wallfade.Version)),
		yellow.Render("Nathan Ollerenshaw"))
}

// background forks a detached copy of the process. It returns true in the
// child, which should carry on running the daemon.
func background() bool {
	dctx := &daemon.Context{
		WorkDir: "/",
		Umask:   0o027,
		Args:    os.Args,
	}
	child, err := dctx.Reborn()
	if err != nil {
		log.Fatalf("Failed to start in background: %v", err)
	}
	if child != nil {
		log.Infof("wallfade started in background with PID %d", child.Pid)
		return false
	}
	return true
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)
	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewNextCmd(),
		cmd.NewStopCmd(),
		cmd.NewStatusCmd(),
		cmd.NewLoadCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
