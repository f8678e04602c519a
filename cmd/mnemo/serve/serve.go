// Package servecmder provides the serve command, exposing the memory store
// over MCP streamable HTTP.
package servecmder

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	mcpapi "github.com/mnemoware/mnemo/api/mcp"
	"github.com/mnemoware/mnemo/pkg/bootstrap"
	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/storepath"
)

type serveCommander struct {
	listen string

	path  string
	debug bool
}

const serveLongDesc string = `Serve the memory store over the Model Context Protocol.

Bootstraps the store like any other command, then listens for MCP streamable
HTTP connections and exposes memory_store, memory_query, and memory_list as
tools. Runs until interrupted.

Example:
  mnemo serve
  mnemo serve --listen :9000`

const serveShortDesc string = "Serve the memory store over MCP"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:       "serve [mcp]",
		Short:     serveShortDesc,
		Long:      serveLongDesc,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"mcp"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.path, _ = cmd.Flags().GetString("path")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			if err := cmder.run(cmd.Context()); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Listen address (default from config, :8090)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	log := logger.New(logger.WithDebug(c.debug))

	storePath, err := storepath.Resolve(c.path)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(c.path)
	if err != nil {
		return err
	}
	toolCfg, err := cfger.LoadConfig()
	if err != nil {
		return err
	}

	address := toolCfg.Serve.Listen
	if c.listen != "" {
		address = c.listen
	}

	svc, closer, err := bootstrap.OpenService(ctx, bootstrap.OptionsFrom(toolCfg, storePath, log))
	if err != nil {
		return err
	}
	defer closer()

	mcpServer, err := mcpapi.NewServer(mcpapi.Config{
		Service: svc,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              address,
		Handler:           mcpServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return err
	}

	log.Info("mcp server listening", "address", listener.Addr().String(), "store", storePath)
	fmt.Fprintf(os.Stderr, "mnemo mcp server running at http://%s\n", listener.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
