package ai

import (
	"strings"
	"testing"
)

func TestNewPromptTemplate(t *testing.T) {
	pt := NewPromptTemplate("Custom system prompt")

	if pt.SystemPrompt != "Custom system prompt" {
		t.Errorf("SystemPrompt = %q", pt.SystemPrompt)
	}
	if pt.UserPrompt != DefaultUserPromptTemplate {
		t.Error("UserPrompt should be the default template")
	}
}

func TestRenderUserPrompt(t *testing.T) {
	pt := NewPromptTemplate(DefaultSystemPrompt)
	diff := "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")"

	got, err := pt.RenderUserPrompt(&PromptData{Diff: diff})
	if err != nil {
		t.Fatalf("RenderUserPrompt() error = %v", err)
	}

	want := "Here are the changes that need to be committed:\n```diff\n" + diff +
		"\n```\n\nPlease write a concise and descriptive commit message explaining what these changes do."
	if got != want {
		t.Errorf("RenderUserPrompt() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderUserPrompt_NoEscaping(t *testing.T) {
	pt := NewPromptTemplate(DefaultSystemPrompt)
	diff := "-if a < b && c > d {\n+if a <= b {\n\"quoted\" 'single' {{.Diff}}"

	got, err := pt.RenderUserPrompt(&PromptData{Diff: diff})
	if err != nil {
		t.Fatalf("RenderUserPrompt() error = %v", err)
	}
	if !strings.Contains(got, diff) {
		t.Errorf("diff was altered during rendering: %q", got)
	}
}

func TestRenderUserPrompt_InvalidTemplate(t *testing.T) {
	pt := NewPromptTemplate(DefaultSystemPrompt)
	pt.UserPrompt = "{{.Diff"

	if _, err := pt.RenderUserPrompt(&PromptData{}); err == nil {
		t.Error("expected parse error for broken template")
	}
}
