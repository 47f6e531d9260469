package prompts

import (
	"strings"
	"testing"
)

func TestNewPromptManagerLoadsTemplates(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager: %v", err)
	}

	for _, task := range []string{"questions", "feedback", "clarify"} {
		if _, ok := pm.prompts[task]; !ok {
			t.Errorf("template %q not loaded", task)
		}
	}
}

func TestBuildPromptSubstitutesVars(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager: %v", err)
	}

	prompt, err := pm.BuildPrompt("questions", Vars{
		JobTitle:       "Backend Engineer",
		JobDescription: "Builds Go services",
	})
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	if !strings.Contains(prompt, "Backend Engineer") {
		t.Error("job title not substituted")
	}
	if !strings.Contains(prompt, "Builds Go services") {
		t.Error("job description not substituted")
	}
	if strings.Contains(prompt, "{{.") {
		t.Errorf("unresolved placeholder left in prompt:\n%s", prompt)
	}
}

func TestBuildPromptUnknownTask(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager: %v", err)
	}

	if _, err := pm.BuildPrompt("nonsense", Vars{}); err == nil {
		t.Error("expected error for unknown task")
	}
}
