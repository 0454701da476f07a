package domain

// RegistryToolkit groups remote-registry tools under an authenticated
// integration.
type RegistryToolkit struct {
	Name        string   `json:"name"`
	AuthSchemes []string `json:"auth_schemes"`
}

// RegistryToolSummary is the remote registry's view of one tool.
type RegistryToolSummary struct {
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	Toolkit          string         `json:"toolkit"`
	InputParameters  map[string]any `json:"input_parameters"`
	OutputParameters map[string]any `json:"output_parameters"`
}

// RegistryIndex is the remote tool registry fetched at startup,
// keyed by toolkit and tool slug.
type RegistryIndex struct {
	Toolkits map[string]RegistryToolkit
	Tools    map[string]RegistryToolSummary
}

// Empty reports whether the index holds no tools.
func (i RegistryIndex) Empty() bool {
	return len(i.Tools) == 0
}

// Resolve builds the result payload for a registry tool slug.
func (i RegistryIndex) Resolve(slug string) (RegistryTool, bool) {
	tool, ok := i.Tools[slug]
	if !ok {
		return RegistryTool{}, false
	}
	toolkit := i.Toolkits[tool.Toolkit]
	return RegistryTool{
		ToolName:         slug,
		Description:      tool.Description,
		ToolkitName:      toolkit.Name,
		AuthSchemes:      toolkit.AuthSchemes,
		InputParameters:  tool.InputParameters,
		OutputParameters: tool.OutputParameters,
	}, true
}
