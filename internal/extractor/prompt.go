package extractor

import (
	"fmt"
	"os"
	"strings"
)

// ConversationPlaceholder marks where the conversation goes in a prompt
// template. Literal braces elsewhere in the template are written doubled,
// "{{" and "}}", so JSON examples survive substitution.
const ConversationPlaceholder = "{conversation}"

// LoadPromptTemplate reads a prompt template from disk.
func LoadPromptTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	tmpl := strings.TrimPrefix(string(b), "\ufeff")
	if strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("prompt %s is empty", path)
	}
	return tmpl, nil
}

// BuildPrompt fills the template with the conversation. A template without
// the placeholder gets the conversation appended after a blank line.
func BuildPrompt(template, conversation string) string {
	parts := strings.Split(template, ConversationPlaceholder)
	for i, p := range parts {
		p = strings.ReplaceAll(p, "{{", "{")
		parts[i] = strings.ReplaceAll(p, "}}", "}")
	}
	if len(parts) == 1 {
		return strings.TrimRight(parts[0], "\n") + "\n\n" + conversation
	}
	return strings.Join(parts, conversation)
}
