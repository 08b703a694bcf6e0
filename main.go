package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/duynguyendang/implica/internal/config"
	"github.com/duynguyendang/implica/internal/manager"
	"github.com/duynguyendang/implica/pkg/mcp"
	"github.com/duynguyendang/implica/pkg/repl"
	"github.com/duynguyendang/implica/pkg/server"
	"github.com/duynguyendang/implica/pkg/service"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "implica",
		Short: "implica is an in-memory, typed property-graph engine",
		Long: "implica stores nodes and edges carrying simply-typed lambda-calculus types and terms,\n" +
			"and answers Cypher-inspired pattern queries with type and term schemas.",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive query shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := bootstrap()
			if err != nil {
				return err
			}
			return repl.NewSession(svc).Run()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			return server.NewServer(svc).Run(cfg.Addr())
		},
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := bootstrap()
			if err != nil {
				return err
			}
			return mcp.Run(context.Background(), svc)
		},
	}

	root.AddCommand(replCmd, serveCmd, mcpCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the graph manager and
// service.
func bootstrap() (*service.GraphService, *config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
		slog.Info("configuration loaded", "path", configPath, "graphs", len(cfg.Graphs))
	}

	mgr := manager.NewGraphManager()
	for _, decl := range cfg.Graphs {
		constants, err := decl.BuildConstants()
		if err != nil {
			return nil, nil, err
		}
		if err := mgr.Create(decl.Name, constants...); err != nil {
			return nil, nil, err
		}
	}
	if _, err := mgr.Get(manager.DefaultGraph); err != nil {
		if err := mgr.Create(manager.DefaultGraph); err != nil {
			return nil, nil, err
		}
	}

	return service.NewGraphService(mgr), cfg, nil
}
