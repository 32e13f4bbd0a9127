package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"success-mcp/internal/apikey"
	"success-mcp/internal/handler"
	"success-mcp/internal/identity"
	"success-mcp/internal/logger"
	"success-mcp/internal/mcpserver"
	"success-mcp/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		transport string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio or HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch transport {
			case "stdio":
				a, err := build(true)
				if err != nil {
					return err
				}
				defer a.Close()
				logger.Info("server starting", "transport", "stdio", "tools", len(a.tools.Names()))
				return mcpserver.ServeStdio(mcpserver.New(a.tools))
			case "http":
				a, err := build(false)
				if err != nil {
					return err
				}
				defer a.Close()
				if port > 0 {
					a.cfg.Server.Port = port
				}
				return serveHTTP(cmd.Context(), a)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}
	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "stdio|http")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return cmd
}

func serveHTTP(ctx context.Context, a *app) error {
	secret := []byte(a.cfg.Server.JWTSecret)
	if len(secret) == 0 {
		logger.Warn("jwt_secret not set: /mcp and /api/tools are unauthenticated")
	}
	r := handler.NewRouter(handler.Routes{
		Tools:    a.tools,
		Auth:     handler.NewAuthHandler(service.NewAuthService(a.cfg.Server.Operators), secret, a.cfg.Server.TokenTTL),
		MCP:      mcpserver.HTTPHandler(mcpserver.New(a.tools)),
		Metrics:  promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		Secret:   secret,
		TokenTTL: a.cfg.Server.TokenTTL,
	})

	srv := &http.Server{Addr: a.cfg.Addr(), Handler: r}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("server starting", "transport", "http", "addr", a.cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		return err
	}
	return nil
}

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Run one tool and print its text result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(true)
			if err != nil {
				return err
			}
			defer a.Close()

			var toolArgs map[string]any
			if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
				if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			res, err := a.tools.Call(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), handler.Text(res))
			if res.IsError {
				os.Exit(2)
			}
			return nil
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(true)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, t := range a.tools.Tools() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", t.Tool.Name, t.Tool.Description)
			}
			return nil
		},
	}
}

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "apikey", Short: "Manage the stored success.co API key"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key>",
			Short: "Write the key file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := build(true)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.keys.Set(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", apikey.Mask(args[0]), a.keys.FilePath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show which key is in use",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := build(true)
				if err != nil {
					return err
				}
				defer a.Close()
				key, src, err := a.keys.Key(cmd.Context())
				if errors.Is(err, apikey.ErrNoKey) {
					fmt.Fprintln(cmd.OutOrStdout(), "no key configured")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (from %s)\n", apikey.Mask(key), src)
				return nil
			},
		},
	)
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the GraphQL endpoint and the identity database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(true)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			fmt.Fprintf(out, "endpoint: %s\n", a.cfg.GraphQL.Endpoint)
			teams, err := a.svc.GetTeams(ctx, service.TeamQuery{Page: service.Page{First: 1}})
			if err != nil {
				return fmt.Errorf("graphql: %w", err)
			}
			fmt.Fprintf(out, "graphql: ok (%d teams)\n", teams.TotalCount)

			id, err := a.svc.Caller(ctx)
			switch {
			case errors.Is(err, identity.ErrUnavailable):
				fmt.Fprintln(out, "identity: no database configured")
			case err != nil:
				fmt.Fprintf(out, "identity: %v\n", err)
			default:
				fmt.Fprintf(out, "identity: company %s, user %s\n", id.CompanyID, id.UserID)
			}
			return nil
		},
	}
}
