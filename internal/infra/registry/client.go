// Package registry fetches the optional remote tool registry consulted
// alongside local recommendations. The registry is read once at
// startup; failures here never block serving.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Client talks to the remote registry's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limit   int
	logger  *zap.Logger
}

// NewClient builds a registry client from config, reading the API key
// from the configured env var.
func NewClient(cfg domain.RegistryConfig, logger *zap.Logger) (*Client, error) {
	const op = "registry.NewClient"
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, domain.E(domain.CodeInvalidArgument, op, "registry base URL is required", nil)
	}

	envVar := strings.TrimSpace(cfg.APIKeyEnvVar)
	if envVar == "" {
		envVar = domain.DefaultRegistryAPIKeyEnvVar
	}
	apiKey := strings.TrimSpace(os.Getenv(envVar))
	if apiKey == "" {
		return nil, domain.E(domain.CodeFailedPrecond, op, "registry API key not found in env var "+envVar, nil)
	}

	limit := cfg.PageLimit
	if limit <= 0 {
		limit = domain.DefaultRegistryPageLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: cfg.Timeout()},
		limit:   limit,
		logger:  logger.Named("registry"),
	}, nil
}

type toolkitItem struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	AuthSchemes []string `json:"auth_schemes"`
}

type toolItem struct {
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	InputParameters  map[string]any `json:"input_parameters"`
	OutputParameters map[string]any `json:"output_parameters"`
	Toolkit          struct {
		Slug string `json:"slug"`
	} `json:"toolkit"`
}

// Load fetches toolkits and tools and builds the index.
func (c *Client) Load(ctx context.Context) (domain.RegistryIndex, error) {
	const op = "registry.Load"

	var toolkitsPage struct {
		Items []toolkitItem `json:"items"`
	}
	if err := c.get(ctx, "/toolkits", &toolkitsPage); err != nil {
		return domain.RegistryIndex{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}

	var toolsPage struct {
		Items []toolItem `json:"items"`
	}
	if err := c.get(ctx, "/tools", &toolsPage); err != nil {
		return domain.RegistryIndex{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}

	index := domain.RegistryIndex{
		Toolkits: make(map[string]domain.RegistryToolkit, len(toolkitsPage.Items)),
		Tools:    make(map[string]domain.RegistryToolSummary, len(toolsPage.Items)),
	}
	for _, item := range toolkitsPage.Items {
		index.Toolkits[item.Slug] = domain.RegistryToolkit{
			Name:        item.Name,
			AuthSchemes: item.AuthSchemes,
		}
	}
	for _, item := range toolsPage.Items {
		index.Tools[item.Slug] = domain.RegistryToolSummary{
			Slug:             item.Slug,
			Description:      item.Description,
			Toolkit:          item.Toolkit.Slug,
			InputParameters:  item.InputParameters,
			OutputParameters: item.OutputParameters,
		}
	}
	c.logger.Info("registry loaded",
		zap.Int("toolkits", len(index.Toolkits)),
		zap.Int("tools", len(index.Tools)))
	return index, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path + "?" + url.Values{"limit": []string{strconv.Itoa(c.limit)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.E(domain.CodeUnavailable, "registry.get", "registry request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.E(domain.CodeUnavailable, "registry.get",
			fmt.Sprintf("registry returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body))), nil)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
