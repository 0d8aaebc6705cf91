package main

import (
	"github.com/ayusman/musclemap/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr      string
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session API and live scoring WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(root.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			tuning, err := loadTuning(root.tuning)
			if err != nil {
				return err
			}

			st, err := openStore(root.dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if staticDir == "" {
				staticDir = findWebDir()
			}
			if staticDir != "" {
				logger.Info("serving static files", zap.String("dir", staticDir))
			}

			srv := server.New(server.Config{
				StaticDir: staticDir,
				Store:     st,
				Tuning:    tuning,
				Logger:    logger,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory of static files to serve at /")
	return cmd
}
