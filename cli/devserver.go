package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	serverhttp "github.com/Remi1095/chronicle/server/protocols/http"
	"github.com/Remi1095/chronicle/server/storage/memory"
	"github.com/spf13/cobra"
)

type devServerOptions struct {
	addr string
}

func newDevServerCommand(s *session) *cobra.Command {
	opts := &devServerOptions{}

	devServerCmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory chronicle API for local development",
		Long: heredoc.Doc(`
			Serve the chronicle REST API under /api from memory. Data is lost when
			the server stops. Stop it with Ctrl+C.

			Examples:
			  chronicle devserver
			  chronicle devserver --addr 127.0.0.1:8080`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevServer(cmd, s, opts)
		},
	}
	devServerCmd.Flags().StringVar(&opts.addr, "addr", ":3000", "address to listen on")

	return devServerCmd
}

func runDevServer(cmd *cobra.Command, s *session, opts *devServerOptions) error {
	store := memory.NewStore(s.logger)
	server := serverhttp.NewServer(store, s.logger)

	// Shutdown is driven from here so that RunE only returns once the
	// server has stopped.
	if err := server.Start(context.Background(), opts.addr); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving chronicle API on http://%s/api\n", server.Addr())

	<-cmd.Context().Done()
	return server.Stop()
}
