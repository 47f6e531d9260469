package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptManager holds the interview prompt templates keyed by task name
// (questions, feedback, clarify).
type PromptManager struct {
	prompts map[string]string
}

// loaded prompt template
type PromptTemplate struct {
	System string `yaml:"system"`
	Prompt string `yaml:"prompt"`
}

// Vars are the substitutions available to every template. Unused fields
// are simply never referenced by the template text.
type Vars struct {
	JobTitle       string
	JobDescription string
	Question       string
	ExpectedAnswer string
	UserAnswer     string
	UserQuery      string
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds a prompt for the given task
func (pm *PromptManager) BuildPrompt(task string, vars Vars) (string, error) {
	promptTemplate, exists := pm.prompts[task]
	if !exists {
		return "", fmt.Errorf("template not found for task: %s", task)
	}

	// Simple string replacement instead of complex template execution
	result := strings.ReplaceAll(promptTemplate, "{{.JobTitle}}", vars.JobTitle)
	result = strings.ReplaceAll(result, "{{.JobDescription}}", vars.JobDescription)
	result = strings.ReplaceAll(result, "{{.Question}}", vars.Question)
	result = strings.ReplaceAll(result, "{{.ExpectedAnswer}}", vars.ExpectedAnswer)
	result = strings.ReplaceAll(result, "{{.UserAnswer}}", vars.UserAnswer)
	result = strings.ReplaceAll(result, "{{.UserQuery}}", vars.UserQuery)

	return result, nil
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		var fullPrompt strings.Builder
		if promptTemplate.System != "" {
			fullPrompt.WriteString(promptTemplate.System)
			fullPrompt.WriteString("\n\n")
		}
		fullPrompt.WriteString(promptTemplate.Prompt)

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = fullPrompt.String()
	}

	return nil
}
