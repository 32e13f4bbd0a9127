package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"success-mcp/internal/apikey"
	"success-mcp/internal/logger"
	"success-mcp/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var ErrUnknownTool = errors.New("unknown tool")

// ToolHandler owns every tool definition and its handler. The same handlers
// serve MCP clients, the REST endpoint and the call subcommand.
type ToolHandler struct {
	svc   *service.Service
	keys  *apikey.Resolver
	tools map[string]server.ServerTool
}

func NewToolHandler(svc *service.Service, keys *apikey.Resolver) *ToolHandler {
	h := &ToolHandler{svc: svc, keys: keys, tools: map[string]server.ServerTool{}}
	for _, group := range [][]server.ServerTool{h.readTools(), h.writeTools(), h.reportTools(), h.keyTools()} {
		for _, t := range group {
			h.tools[t.Tool.Name] = t
		}
	}
	return h
}

// Tools returns the tool set sorted by name.
func (h *ToolHandler) Tools() []server.ServerTool {
	out := make([]server.ServerTool, 0, len(h.tools))
	for _, name := range h.Names() {
		out = append(out, h.tools[name])
	}
	return out
}

func (h *ToolHandler) Names() []string {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs one tool outside of an MCP session.
func (h *ToolHandler) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t, ok := h.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTool, name)
	}
	var req mcp.CallToolRequest
	req.Params.Name = name
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return t.Handler(ctx, req)
}

// run adapts a typed service call into a tool handler. Arguments are bound
// by a JSON round trip into A.
func run[A any](fn func(ctx context.Context, a A) (any, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		name := req.Params.Name

		var a A
		if err := bind(req.GetArguments(), &a); err != nil {
			logger.Warn("tool.bind", "tool", name, "err", err)
			return failure(err), nil
		}
		out, err := fn(ctx, a)
		if err != nil {
			if _, partial := service.IsPartial(err); !partial {
				logger.Warn("tool.failed", "tool", name, "err", err, "ms", time.Since(start).Milliseconds())
				return failure(err), nil
			}
			logger.Warn("tool.partial", "tool", name, "err", err)
		}
		logger.Info("tool.call", "tool", name, "ms", time.Since(start).Milliseconds())
		return success(out, err)
	}
}

func bind(args map[string]any, dst any) error {
	if len(args) == 0 {
		return nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return &service.ValidationError{Msg: "invalid arguments: " + err.Error()}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return &service.ValidationError{Msg: fmt.Sprintf("invalid %s: expected %s", te.Field, te.Type)}
		}
		return &service.ValidationError{Msg: "invalid arguments: " + err.Error()}
	}
	return nil
}

// success renders out as indented JSON, or verbatim when it is already
// text. A partial error is appended as a warning.
func success(out any, partial error) (*mcp.CallToolResult, error) {
	var text string
	switch v := out.(type) {
	case string:
		text = v
	case markdown:
		text = string(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return failure(fmt.Errorf("encode result: %w", err)), nil
		}
		text = string(data)
	}
	if partial != nil {
		text += "\n\nWarning: " + partial.Error()
	}
	return mcp.NewToolResultText(text), nil
}

func failure(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + capitalize(err.Error()))
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Text joins the text content of a tool result.
func Text(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type markdown string

// formatArg selects between a Markdown report and the raw JSON structure.
type formatArg struct {
	Format string `json:"format"`
}

func (f formatArg) markdown(def string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(f.Format)) {
	case "":
		return def == "markdown", nil
	case "markdown", "md":
		return true, nil
	case "json":
		return false, nil
	}
	return false, &service.ValidationError{Msg: fmt.Sprintf("Invalid format %q. Must be one of: markdown, json", f.Format)}
}

// Schema helpers. Every option carries a description.

func define(name, desc string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(desc)}, opts...)...)
}

func join(groups ...[]mcp.ToolOption) []mcp.ToolOption {
	var out []mcp.ToolOption
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func str(name, desc string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithString(name, append([]mcp.PropertyOption{mcp.Description(desc)}, opts...)...)
}

func num(name, desc string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithNumber(name, append([]mcp.PropertyOption{mcp.Description(desc)}, opts...)...)
}

func flag(name, desc string) mcp.ToolOption {
	return mcp.WithBoolean(name, mcp.Description(desc))
}

func idList(name, desc string) mcp.ToolOption {
	return mcp.WithArray(name, mcp.Description(desc), mcp.WithStringItems())
}

func enum(desc string, values ...string) []mcp.PropertyOption {
	return []mcp.PropertyOption{
		mcp.Description(desc + " One of: " + strings.Join(values, ", ") + "."),
		mcp.Enum(values...),
	}
}

func enumStr(name, desc string, values ...string) mcp.ToolOption {
	return mcp.WithString(name, enum(desc, values...)...)
}

func paging() []mcp.ToolOption {
	return []mcp.ToolOption{
		num("first", "Maximum number of results (default 50, max 500).", mcp.Min(1), mcp.Max(500)),
		num("offset", "Number of results to skip.", mcp.Min(0)),
	}
}

func scope() []mcp.ToolOption {
	return []mcp.ToolOption{
		str("teamId", "Restrict to this team."),
		flag("leadershipTeam", "Use the leadership team when teamId is not given."),
	}
}

func state() mcp.ToolOption {
	return enumStr("stateId", "Row state (default ACTIVE).", "ACTIVE", "DELETED", "INACTIVE")
}

func keyword() mcp.ToolOption {
	return str("keyword", "Case-insensitive match on name or description.")
}

func formatOpt(def string) mcp.ToolOption {
	return enumStr("format", "Output format (default "+def+").", "markdown", "json")
}
