package main

import (
	"fmt"
	"io"
	"os"

	"success-mcp/internal/apikey"
	"success-mcp/internal/config"
	"success-mcp/internal/graphql"
	"success-mcp/internal/handler"
	"success-mcp/internal/identity"
	"success-mcp/internal/logger"
	"success-mcp/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "success-mcp",
	Short: "MCP tool server for the success.co GraphQL API",
	Long: `success-mcp exposes teams, to-dos, rocks, issues, headlines, meetings,
scorecards, the accountability chart and the V/TO of a success.co account as
MCP tools.

Examples:
  # Serve MCP over stdin/stdout (for desktop MCP clients)
  success-mcp serve

  # Serve MCP and the REST tool API over HTTP
  success-mcp serve --transport http --config etc/config.yaml

  # Run one tool from the shell
  success-mcp call getTodos '{"status":"OVERDUE","leadershipTeam":true}'`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (e.g. etc/config.yaml)")
	rootCmd.AddCommand(serveCmd(), callCmd(), toolsCmd(), apikeyCmd(), checkCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *config.Config
	keys     *apikey.Resolver
	identity *identity.Resolver
	svc      *service.Service
	tools    *handler.ToolHandler
	registry *prometheus.Registry
	closers  []io.Closer
}

// build wires config -> logger -> database -> identity -> key resolver ->
// GraphQL client -> service -> tool handlers. stderrLog keeps stdout free for
// the stdio transport.
func build(stderrLog bool) (*app, error) {
	cfg := config.Load(configFile)
	if stderrLog {
		cfg.Log.Stderr = true
	}
	logger.Init(cfg.Log)

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := cfg.OpenGormDB()
	if err != nil {
		logger.Error("db connect failed", "err", err)
		return nil, err
	}
	// Without a database tools still run, minus company ids and default owners.
	var lookup identity.Lookup
	if db != nil {
		lookup = identity.NewStore(db)
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		logger.Info("identity lookup enabled")
	}
	a.identity = identity.NewResolver(lookup, cfg.Identity.KeyPrefix, cfg.Identity.CacheSize, cfg.Identity.CacheTTL)

	a.keys = apikey.NewResolver(cfg.GraphQL.APIKey, apikey.NewFileStore(cfg.GraphQL.APIKeyFile))

	var debug *graphql.DebugLog
	if cfg.GraphQL.DebugLog != "" {
		w := logger.RotatingFile(cfg.GraphQL.DebugLog, cfg.Log)
		a.closers = append(a.closers, w)
		debug = graphql.NewDebugLog(w)
	}
	gql := graphql.New(graphql.Options{
		Endpoint:  cfg.GraphQL.Endpoint,
		Key:       a.keys.APIKey,
		Timeout:   cfg.GraphQL.Timeout,
		RateLimit: cfg.GraphQL.RateLimit,
		Burst:     cfg.GraphQL.Burst,
		Debug:     debug,
		Metrics:   graphql.NewMetrics(a.registry),
	})

	a.svc = service.New(gql, a.identity, a.keys)
	a.tools = handler.NewToolHandler(a.svc, a.keys)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn("close", "err", err)
		}
	}
}
