package completion

// Role identifies who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// IsValid reports whether the message has a known role and some content.
func (m Message) IsValid() bool {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		return m.Content != ""
	default:
		return false
	}
}

// Request is a chat completion request before it is mapped onto a provider.
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float32
	MaxTokens   *int
}

// Option configures a Request.
type Option func(*Request)

// WithModel overrides the model.
func WithModel(model string) Option {
	return func(r *Request) {
		r.Model = model
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float32) Option {
	return func(r *Request) {
		r.Temperature = &t
	}
}

// WithMaxTokens limits the number of generated tokens.
func WithMaxTokens(n int) Option {
	return func(r *Request) {
		r.MaxTokens = &n
	}
}

// NewRequest builds a two-message request: the system instruction then the
// user's text.
func NewRequest(systemPrompt, userText string, opts ...Option) *Request {
	r := &Request{
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userText},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
