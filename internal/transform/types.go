package transform

// Params are the sampling parameters sent with every request.
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Prompts holds the instruction templates. Placeholders {text}, {code},
// {table}, {tone} and {verbosity} are substituted at request time.
type Prompts struct {
	System    string
	Text      string
	Code      string
	Table     string
	Tone      string
	Verbosity string
}

// Options configures a Transformer.
type Options struct {
	APIKeys []string
	Params  Params
	Prompts Prompts
}
