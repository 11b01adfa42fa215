package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridworks/mapgen/internal/imaging"
	"github.com/gridworks/mapgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated map over HTTP",
	Long: `Generate the tile grid and serve it over HTTP: cells as JSON at
/grid, the rendered map at /map.png, liveness at /healthz.

With --refresh the source image is re-read and the grid regenerated on
an interval, so edits to the image show up in the browser without a
restart.

Examples:
  # Serve on the default port
  mapgen serve --image world.png

  # Regenerate from the image every 30 seconds
  mapgen serve --image world.png --refresh 30s --port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("image", "i", "", "source image (required)")
	serveCmd.Flags().Int("grid-width", 50, "grid width in cells")
	serveCmd.Flags().Int("grid-height", 50, "grid height in cells")
	serveCmd.Flags().Int("cell-size", 10, "rendered cell size in pixels")
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("refresh", 0, "regeneration interval (0 disables)")

	viper.BindPFlag("serve-image", serveCmd.Flags().Lookup("image"))
	viper.BindPFlag("serve-grid-width", serveCmd.Flags().Lookup("grid-width"))
	viper.BindPFlag("serve-grid-height", serveCmd.Flags().Lookup("grid-height"))
	viper.BindPFlag("serve-cell-size", serveCmd.Flags().Lookup("cell-size"))
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.refresh", serveCmd.Flags().Lookup("refresh"))
}

func runServe(cmd *cobra.Command, args []string) error {
	path := viper.GetString("serve-image")
	if path == "" {
		return fmt.Errorf("a source image is required (use --image)")
	}

	width := viper.GetInt("serve-grid-width")
	height := viper.GetInt("serve-grid-height")
	cell := viper.GetInt("serve-cell-size")
	refresh := viper.GetDuration("server.refresh")
	addr := fmt.Sprintf("%s:%d", viper.GetString("server.bind"), viper.GetInt("server.port"))

	log := newLogger()

	cache := imaging.NewImageCache()
	g, err := generateGrid(log, cache, path, width, height, false)
	if err != nil {
		return err
	}

	_, _, display, err := loadPalette()
	if err != nil {
		return err
	}

	srv := server.New(display, cell, cell, log)
	srv.SetGrid(g)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	stop := make(chan struct{})
	if refresh > 0 {
		go func() {
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					cache.Evict(path)
					fresh, err := generateGrid(log, cache, path, width, height, false)
					if err != nil {
						log.Error("regeneration failed, keeping previous grid", "error", err)
						continue
					}
					srv.SetGrid(fresh)
					log.Debug("grid refreshed")
				}
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		close(stop)

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("server shutdown", "error", err)
		}
	}()

	log.Info("serving map", "addr", addr, "refresh", refresh)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
