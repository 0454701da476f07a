package domain

const (
	DefaultTopK                       = 2
	DefaultRecommenderProvider        = "gemini"
	DefaultRecommenderModel           = "gemini-2.5-flash"
	DefaultGeminiBaseURL              = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiAPIKeyEnvVar         = "GEMINI_API_KEY"
	DefaultRecommenderTimeoutSeconds  = 30
	DefaultHTTPListenAddress          = "127.0.0.1:8000"
	DefaultHTTPPath                   = "/mcp"
	DefaultTransportMode              = "streamable-http"
	DefaultObservabilityListenAddress = "127.0.0.1:9464"
	DefaultRegistryAPIKeyEnvVar       = "REGISTRY_API_KEY"
	DefaultRegistryTimeoutSeconds     = 15
	DefaultRegistryPageLimit          = 1000
	DefaultRescanDebounceMillis       = 500
	ScanDirectoryEnvVar               = "SCAN_DIRECTORY"
)
