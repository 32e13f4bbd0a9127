package handler

import (
	"context"
	"errors"
	"strings"

	"success-mcp/internal/apikey"
	"success-mcp/internal/model"
	"success-mcp/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *ToolHandler) keyTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: define("setApiKey", "Store the success.co API key used for every following call. The key is also written to the local key file.",
				str("apiKey", "The API key.", mcp.Required()),
			),
			Handler: run(func(ctx context.Context, a struct {
				APIKey string `json:"apiKey"`
			}) (any, error) {
				if strings.TrimSpace(a.APIKey) == "" {
					return nil, &service.ValidationError{Msg: "apiKey is required"}
				}
				if err := h.keys.Set(ctx, a.APIKey); err != nil {
					return nil, err
				}
				return h.keyStatus(ctx)
			}),
		},
		{
			Tool: define("getApiKey", "Show where the API key in use comes from, with the key masked.",
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: run(func(ctx context.Context, _ struct{}) (any, error) { return h.keyStatus(ctx) }),
		},
	}
}

func (h *ToolHandler) keyStatus(ctx context.Context) (model.APIKeyStatus, error) {
	key, src, err := h.keys.Key(ctx)
	if err != nil && !errors.Is(err, apikey.ErrNoKey) {
		return model.APIKeyStatus{}, err
	}
	st := model.APIKeyStatus{Source: string(src), Path: h.keys.FilePath()}
	if key != "" {
		st.Key = apikey.Mask(key)
	}
	return st, nil
}
