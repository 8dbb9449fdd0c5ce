package ai

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: any diff appears verbatim between the fence lines.
func TestRenderUserPrompt_DiffVerbatim_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)
	pt := NewPromptTemplate(DefaultSystemPrompt)

	properties.Property("diff is fenced verbatim", prop.ForAll(
		func(diff string) bool {
			out, err := pt.RenderUserPrompt(&PromptData{Diff: diff})
			if err != nil {
				return false
			}
			return strings.Contains(out, "```diff\n"+diff+"\n```")
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
