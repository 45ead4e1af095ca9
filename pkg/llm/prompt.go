package llm

import (
	"regexp"
	"strings"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// InstructionPrefix is prepended to every prompt sent upstream.
const InstructionPrefix = "Convert this to SQL query: "

// SystemMessage steers chat-style providers toward a bare SQL answer.
const SystemMessage = "You translate natural-language questions into a single SQL query. Respond with SQL only."

// thinkTagPattern matches <think>...</think> tags that may appear at the start of LLM responses.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// fencePattern matches a whole response wrapped in a markdown code fence.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z]*[ \t]*\n?(.*?)\n?```$")

// BuildPrompt appends the schema context, when present, to the request.
func BuildPrompt(naturalQuery string, s *schema.Schema) string {
	if s == nil || len(s.Tables) == 0 {
		return naturalQuery
	}
	return naturalQuery + "\nDatabase Schema:\n" + s.PromptContext()
}

// CleanSQL strips reasoning tags and a surrounding code fence from a response.
func CleanSQL(text string) string {
	cleaned := thinkTagPattern.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(cleaned)

	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	} else if strings.HasPrefix(cleaned, "```") {
		// Unterminated fence: drop the opening line only.
		if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
			cleaned = cleaned[i+1:]
		} else {
			cleaned = ""
		}
	}
	return strings.TrimSpace(cleaned)
}
