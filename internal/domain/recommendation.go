package domain

// RecommendParams are the inputs for one recommendation request.
type RecommendParams struct {
	Query string
	TopK  int
}

// Recommendation is one catalog tool judged relevant to a query,
// carrying its verbatim source code.
type Recommendation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	ClassName   string `json:"class_name"`
	Code        string `json:"code"`
}

// RegistryTool is a remote-registry tool judged relevant to a query.
type RegistryTool struct {
	ToolName         string         `json:"tool_name"`
	Description      string         `json:"description"`
	ToolkitName      string         `json:"toolkit_name"`
	AuthSchemes      []string       `json:"auth_schemes"`
	InputParameters  map[string]any `json:"input_parameters"`
	OutputParameters map[string]any `json:"output_parameters"`
}

// RecommendResult is produced fresh per request and never persisted.
// Failures are encoded here rather than surfaced as transport faults.
type RecommendResult struct {
	Success         bool             `json:"success"`
	Query           string           `json:"query,omitempty"`
	TotalAvailable  int              `json:"total_available_tools"`
	Requested       int              `json:"recommendations_requested"`
	Recommendations []Recommendation `json:"recommendations"`
	ToolCreate      bool             `json:"tool_create"`
	RegistryTool    *RegistryTool    `json:"registry_tool,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// FailedRecommendation builds the failure shape for a request.
func FailedRecommendation(query string, err error) RecommendResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return RecommendResult{
		Success:         false,
		Query:           query,
		Recommendations: []Recommendation{},
		ToolCreate:      false,
		Error:           msg,
	}
}

// RecommendationFor projects a catalog record into a recommendation.
func RecommendationFor(rec ToolRecord) Recommendation {
	return Recommendation{
		Name:        rec.Name,
		Description: rec.Description,
		FilePath:    rec.FilePath,
		ClassName:   rec.ClassName,
		Code:        rec.SourceCode,
	}
}
