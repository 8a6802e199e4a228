package llm

// Float64Ptr returns &v. A zero temperature set this way is still sent.
func Float64Ptr(v float64) *float64 {
	return &v
}

type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
}

// Option configures an OpenAIClient.
type Option func(*clientConfig)

// WithBaseURL points the client at an OpenAI-compatible endpoint.
// DefaultBaseURL is used otherwise.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithAPIKey sets the bearer token sent with every call. Local endpoints
// usually need none.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithModel sets the model used when a ChatRequest leaves Model empty.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithTemperature sets the temperature used when a ChatRequest leaves
// Temperature nil.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) { c.temperature = &temp }
}
