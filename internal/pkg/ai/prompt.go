package ai

import (
	"bytes"
	"text/template"
)

// DefaultSystemPrompt is the system prompt written to a fresh config file.
const DefaultSystemPrompt = "You are a helpful assistant who writes concise, professional Git commit messages. " +
	"Given code changes, write a commit message with a clear single-line summary followed by " +
	"a more detailed description in Markdown that explains what was changed and why."

// DefaultUserPromptTemplate wraps the diff in a fenced block.
const DefaultUserPromptTemplate = "Here are the changes that need to be committed:\n" +
	"```diff\n{{.Diff}}\n```\n\n" +
	"Please write a concise and descriptive commit message explaining what these changes do."

// PromptTemplate renders the messages sent to the completion endpoint.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData contains the data used to render the user prompt template.
type PromptData struct {
	Diff string
}

// NewPromptTemplate creates a PromptTemplate that sends systemPrompt verbatim.
func NewPromptTemplate(systemPrompt string) *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: systemPrompt,
		UserPrompt:   DefaultUserPromptTemplate,
	}
}

// RenderUserPrompt renders the user prompt template with the given data.
// The diff is inserted as-is; text/template does no escaping.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if pt.tmpl == nil {
		tmpl, err := template.New("userPrompt").Parse(pt.UserPrompt)
		if err != nil {
			return "", err
		}
		pt.tmpl = tmpl
	}

	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
