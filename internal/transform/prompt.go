package transform

import (
	"strings"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
)

const (
	DefaultSystemPrompt = "You are an expert at converting technical documents into natural, spoken language optimized for text-to-speech applications. Your goal is to transform written content into a form that sounds natural when read aloud."

	DefaultTextPrompt = `Transform the following text into natural, spoken language. Follow these rules:
1. Preserve the original language
2. Convert technical jargon into plain language where appropriate
3. Expand acronyms on first use
4. Remove inline citations but preserve meaning
5. Make the text flow naturally when read aloud
6. Keep the tone {tone} and verbosity {verbosity}

Text to transform:
{text}`

	DefaultCodePrompt = `Describe the following code in natural language. Explain what it does, its purpose, and key logic without reading it line-by-line. Make it understandable to someone listening:

{code}`

	DefaultTablePrompt = `Convert the following table into a narrative description. Explain what the table shows, describe key patterns or trends, and make the data understandable when spoken aloud:

{table}`

	DefaultTone      = "conversational"
	DefaultVerbosity = "balanced"
)

// withDefaults fills empty templates.
func (p Prompts) withDefaults() Prompts {
	if p.System == "" {
		p.System = DefaultSystemPrompt
	}
	if p.Text == "" {
		p.Text = DefaultTextPrompt
	}
	if p.Code == "" {
		p.Code = DefaultCodePrompt
	}
	if p.Table == "" {
		p.Table = DefaultTablePrompt
	}
	if p.Tone == "" {
		p.Tone = DefaultTone
	}
	if p.Verbosity == "" {
		p.Verbosity = DefaultVerbosity
	}
	return p
}

// Render builds the user prompt for chunk. A chunk made only of code blocks
// or only of tables gets the dedicated template.
func (p Prompts) Render(chunk chunker.Chunk) string {
	template, placeholder := p.Text, "{text}"
	switch onlyType(chunk.Elements) {
	case chunker.ElementCode:
		template, placeholder = p.Code, "{code}"
	case chunker.ElementTable:
		template, placeholder = p.Table, "{table}"
	}

	return strings.NewReplacer(
		placeholder, chunk.Text,
		"{tone}", p.Tone,
		"{verbosity}", p.Verbosity,
	).Replace(template)
}

func onlyType(elements []chunker.Element) chunker.ElementType {
	if len(elements) == 0 {
		return ""
	}
	t := elements[0].Type
	for _, e := range elements[1:] {
		if e.Type != t {
			return ""
		}
	}
	return t
}
