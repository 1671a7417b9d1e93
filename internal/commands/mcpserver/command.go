// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcpserver implements the `formulae mcp-server` subcommand.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/mcp/server"
)

// NewCommand creates the mcp-server command.
func NewCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the formulae MCP server",
		Long: `Start the formulae MCP (Model Context Protocol) server.

The MCP server exposes formula evaluation as tools that an LLM-driven agent
can call: formulae_run, formulae_deps, and formulae_validate, all operating
over the definitions matched by --definitions.

The server runs in stdio mode, suitable for integration with an MCP client's
configuration, e.g.:
  {
    "mcpServers": {
      "formulae": {
        "command": "formulae",
        "args": ["mcp-server", "--definitions", "definitions/**/*.yaml"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer(logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging verbosity (debug, info, warn, error)")

	return cmd
}

func runMCPServer(logLevel string) error {
	versionStr, _, _ := shared.GetVersion()

	srv, err := server.NewServer(server.Config{
		Name:            "formulae",
		Version:         versionStr,
		DefinitionsGlob: shared.GetConfigPath(),
		LogLevel:        logLevel,
		EnableTracing:   shared.GetTrace(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}

		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
