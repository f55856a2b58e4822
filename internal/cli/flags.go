package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RegisterFlags adds the persistent flags shared by every command and the
// daemon flags that override config settings.
func RegisterFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/wallfade/wallfade.toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.Flags().Float64("delay", 0, "Seconds between wallpaper changes")
	rootCmd.Flags().Float64("fade", 0, "Length of the cross-fade in seconds")
	rootCmd.Flags().String("backend", "", "Presentation backend (glx or x11)")
	viper.BindPFlag("delay", rootCmd.Flags().Lookup("delay"))
	viper.BindPFlag("fade_speed", rootCmd.Flags().Lookup("fade"))
	viper.BindPFlag("backend", rootCmd.Flags().Lookup("backend"))
}
