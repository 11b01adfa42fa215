// Package cli wires the map generation pipeline into a command line
// tool: generate renders a grid from an image, palette suggests
// classification colors, serve exposes the grid over HTTP.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mapgen",
	Short: "Generate tile-based maps from raster images",
	Long: `mapgen downsamples a raster image to a coarse grid and classifies
each cell against a color palette, turning a painted map image into a
grid of named tiles.

Examples:
  # Generate a 50x50 tile map from an image
  mapgen generate --image world.png --out map.png

  # Use a custom palette from a config file
  mapgen generate --image world.png --config mapgen.yaml

  # Suggest a palette from the image itself
  mapgen palette --image world.png --colors 4

  # Serve the generated map over HTTP, regenerating every 30s
  mapgen serve --image world.png --refresh 30s`,
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mapgen.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mapgen")
	}

	viper.SetEnvPrefix("MAPGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
