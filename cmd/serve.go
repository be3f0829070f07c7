package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/huanfeng/adminpwa/pkg/server"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the manifest, service worker and offline page",
	Long: `serve starts an HTTP server exposing /manifest.json, /sw.js,
/browserconfig.xml, /offline and /pwa/head, resolving the configuration
for every request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadAppConfig()
		if err != nil {
			return err
		}
		addr := app.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		logger := utils.GetGlobalLogger()
		srv := server.New(*app, server.WithLogger(logger), server.WithDebug(debug))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Start(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	rootCmd.AddCommand(serveCmd)
}
