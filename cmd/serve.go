// =============================================================================
// Text Info Extractor - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   extractor serve [--addr :8080]
//
// Runs the HTTP API. Each browser session gets its own record store; idle
// sessions are evicted after server.session_ttl.
//
// =============================================================================

package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/text-info-extractor/internal/server"
	"github.com/ginjaninja78/text-info-extractor/internal/store"
)

// listenAddr overrides server.listen_addr.
var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := appConfig.Extractor()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sessions := store.NewSessions(appConfig.Server.SessionTTL)
		go sessions.Run(ctx, sweepInterval(appConfig.Server.SessionTTL))

		srv := server.New(ex, sessions, server.Options{
			MaxBodyBytes: appConfig.Server.MaxBodyBytes,
			DownloadName: appConfig.Export.DownloadName,
			Export:       exportOptions(),
		}, logger)

		addr := appConfig.Server.ListenAddr
		if listenAddr != "" {
			addr = listenAddr
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default: server.listen_addr)")
}

// sweepInterval checks for idle sessions twice per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 2; interval > time.Minute {
		return interval
	}
	return time.Minute
}
