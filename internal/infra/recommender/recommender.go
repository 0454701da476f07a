// Package recommender selects catalog tools for a natural-language
// query using an LLM. Selection never executes tools and recommender
// failures are reported inside the result payload, not as transport
// errors.
package recommender

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Service runs recommendation requests against a chat model.
type Service struct {
	cfg     domain.RecommenderConfig
	model   model.ToolCallingChatModel
	metrics domain.Metrics
	logger  *zap.Logger
}

// New builds a Service, constructing the chat model for the configured
// provider.
func New(ctx context.Context, cfg domain.RecommenderConfig, metrics domain.Metrics, logger *zap.Logger) (*Service, error) {
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newWithModel(cfg, chatModel, metrics, logger), nil
}

func newWithModel(cfg domain.RecommenderConfig, chatModel model.ToolCallingChatModel, metrics domain.Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		model:   chatModel,
		metrics: metrics,
		logger:  logger.Named("recommender"),
	}
}

// Recommend selects up to TopK catalog tools for the query. Failures
// (empty query, empty catalog, model or parse errors, nothing
// resolvable) come back as an unsuccessful result with the error
// message filled in.
func (s *Service) Recommend(ctx context.Context, params domain.RecommendParams, state domain.CatalogState) domain.RecommendResult {
	started := time.Now()
	result := s.recommend(ctx, params, state)
	var errOut error
	if !result.Success {
		errOut = domain.E(domain.CodeInternal, "recommender.Recommend", result.Error, nil)
	}
	s.metrics.ObserveRecommendation(time.Since(started), errOut)
	return result
}

func (s *Service) recommend(ctx context.Context, params domain.RecommendParams, state domain.CatalogState) domain.RecommendResult {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return domain.FailedRecommendation(params.Query,
			domain.E(domain.CodeInvalidArgument, "recommender.Recommend", "query_description is required", nil))
	}

	topK := params.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	catalog := state.Catalog
	if catalog.Len() == 0 {
		result := domain.FailedRecommendation(query,
			domain.E(domain.CodeFailedPrecond, "recommender.Recommend",
				"no tools available, scan a directory first", nil))
		result.Requested = topK
		return result
	}
	if topK > catalog.Len() {
		topK = catalog.Len()
	}

	response, err := s.generate(ctx, selectionSystemPrompt, buildSelectionPrompt(query, topK, state.Summary().Tools))
	if err != nil {
		result := domain.FailedRecommendation(query, err)
		result.TotalAvailable = catalog.Len()
		result.Requested = topK
		return result
	}

	names, err := parseToolNames(response)
	if err != nil {
		s.logger.Warn("unparsable model response", zap.Error(err), zap.String("response", response))
		result := domain.FailedRecommendation(query, err)
		result.TotalAvailable = catalog.Len()
		result.Requested = topK
		return result
	}

	recommendations := s.resolve(names, catalog, topK)
	s.metrics.ObserveResolution(len(names), len(recommendations))
	if len(recommendations) == 0 {
		result := domain.FailedRecommendation(query,
			domain.E(domain.CodeNotFound, "recommender.Recommend",
				"model returned no tools present in the catalog", nil))
		result.TotalAvailable = catalog.Len()
		result.Requested = topK
		return result
	}

	result := domain.RecommendResult{
		Success:         true,
		Query:           query,
		TotalAvailable:  catalog.Len(),
		Requested:       topK,
		Recommendations: recommendations,
	}
	if s.cfg.AssessUpdates {
		result.ToolCreate = s.assessUpdate(ctx, query, recommendations[0])
	}
	return result
}

// resolve maps model-selected names onto catalog records, dropping
// hallucinated names and duplicates while preserving model order.
func (s *Service) resolve(names []string, catalog domain.Catalog, topK int) []domain.Recommendation {
	recommendations := make([]domain.Recommendation, 0, topK)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if len(recommendations) == topK {
			break
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		record, ok := catalog.LookupName(name)
		if !ok {
			s.logger.Warn("dropping unknown tool from model response", zap.String("tool", name))
			continue
		}
		recommendations = append(recommendations, domain.RecommendationFor(record))
	}
	return recommendations
}

// assessUpdate asks the model whether the top tool's code can be
// adapted for the query. A failed assessment defaults to creating a
// new tool.
func (s *Service) assessUpdate(ctx context.Context, query string, top domain.Recommendation) bool {
	response, err := s.generate(ctx, updateSystemPrompt, buildUpdatePrompt(query, top))
	if err != nil {
		s.logger.Warn("update assessment failed", zap.String("tool", top.Name), zap.Error(err))
		return true
	}
	decision, err := parseUpdateDecision(response)
	if err != nil {
		s.logger.Warn("update assessment unparsable", zap.String("tool", top.Name), zap.Error(err))
		return true
	}
	return !decision.CanUpdate
}

// SelectRegistryTool picks the single most relevant remote-registry
// tool for the query, or nil when the index is empty or nothing
// resolves.
func (s *Service) SelectRegistryTool(ctx context.Context, query string, index domain.RegistryIndex) (*domain.RegistryTool, error) {
	if index.Empty() {
		return nil, nil
	}

	slugs := make([]string, 0, len(index.Tools))
	for slug := range index.Tools {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	response, err := s.generate(ctx, selectionSystemPrompt, buildRegistryPrompt(query, slugs, index))
	if err != nil {
		return nil, err
	}
	names, err := parseToolNames(response)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if tool, ok := index.Resolve(name); ok {
			return &tool, nil
		}
	}
	return nil, nil
}

// generate runs one model call under the configured timeout and
// records latency and token usage.
func (s *Service) generate(ctx context.Context, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	started := time.Now()
	response, err := s.model.Generate(callCtx, messages)
	s.metrics.ObserveModelCall(s.cfg.Provider, s.cfg.Model, time.Since(started), err)
	if err != nil {
		return "", domain.E(domain.CodeUnavailable, "recommender.generate", "model generate failed", err)
	}
	s.observeTokenUsage(response)
	return response.Content, nil
}

func (s *Service) observeTokenUsage(response *schema.Message) {
	if response == nil || response.ResponseMeta == nil || response.ResponseMeta.Usage == nil {
		return
	}
	tokens := response.ResponseMeta.Usage.TotalTokens
	if tokens <= 0 {
		return
	}
	s.metrics.ObserveModelTokens(s.cfg.Provider, s.cfg.Model, tokens)
}

// buildSelectionPrompt lists catalog tools as "- name: description"
// lines, the only projection the model sees. Source code never goes
// into prompts.
func buildSelectionPrompt(query string, topK int, tools []domain.ToolSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User request: %q\n\nAvailable tools:\n", query)
	for _, tool := range tools {
		fmt.Fprintf(&sb, "- %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Fprintf(&sb, "\nReturn the top %d most relevant tools in this JSON format:\n", topK)
	sb.WriteString(`{"recommendations": [{"tool_name": "exact_tool_name_from_list", "reasoning": "why this tool is relevant"}]}`)
	sb.WriteString("\nOnly return the JSON response, no additional text.")
	return sb.String()
}

func buildUpdatePrompt(query string, top domain.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User request: %q\n\nExisting tool %q:\n```python\n%s\n```\n", query, top.Name, top.Code)
	sb.WriteString("Decide whether this tool's code can be updated to satisfy the request, ")
	sb.WriteString("or whether a new tool must be created.\n")
	sb.WriteString(`Return JSON: {"can_update": true_or_false, "reasoning": "brief explanation"}`)
	sb.WriteString("\nOnly return the JSON response, no additional text.")
	return sb.String()
}

func buildRegistryPrompt(query string, slugs []string, index domain.RegistryIndex) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User request: %q\n\nAvailable registry tools:\n", query)
	for _, slug := range slugs {
		fmt.Fprintf(&sb, "- %s: %s\n", slug, index.Tools[slug].Description)
	}
	sb.WriteString("\nReturn the single most relevant tool in this JSON format:\n")
	sb.WriteString(`{"recommendations": [{"tool_name": "exact_tool_name_from_list", "reasoning": "why this tool is relevant"}]}`)
	sb.WriteString("\nOnly return the JSON response, no additional text.")
	return sb.String()
}

const selectionSystemPrompt = `You are a tool recommendation system. Given a user's request and a list of available tools, select only the tools that are directly relevant to completing the request.

Output only the requested JSON. Do not include any extra text or formatting.`

const updateSystemPrompt = `You are a code maintenance assistant. Given a user's request and an existing tool's source code, judge whether the existing code can reasonably be updated to satisfy the request or whether a new tool should be written from scratch.

Output only the requested JSON. Do not include any extra text or formatting.`
