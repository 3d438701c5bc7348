package rag

import (
	"strings"
	"testing"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
)

// distinctive per-language instruction fragments
var instructionMarker = map[language.Language]string{
	language.English:   "Always reply in English.",
	language.Manglish:  "Always reply in Manglish",
	language.Malayalam: "മലയാളത്തിൽ മറുപടി",
}

func TestBuildPromptEmptyContexts(t *testing.T) {
	for _, lang := range language.All() {
		t.Run(lang.String(), func(t *testing.T) {
			prompt := BuildPrompt("what time does the library open", lang, nil)

			if !strings.Contains(prompt, noContextPlaceholder) {
				t.Errorf("prompt missing no-context placeholder:\n%s", prompt)
			}
			if !strings.Contains(prompt, instructionMarker[lang]) {
				t.Errorf("prompt missing %s instruction:\n%s", lang, prompt)
			}
			for other, marker := range instructionMarker {
				if other != lang && strings.Contains(prompt, marker) {
					t.Errorf("prompt for %s contains %s instruction", lang, other)
				}
			}
		})
	}
}

func TestBuildPromptRendersContexts(t *testing.T) {
	contexts := []knowledge.Context{
		{Content: "College library opens at 9 AM"},
		{Content: "Hostel fee is 12000 per semester"},
	}
	prompt := BuildPrompt("library timing?", language.English, contexts)

	if !strings.Contains(prompt, "1. College library opens at 9 AM") {
		t.Errorf("first context not rendered verbatim:\n%s", prompt)
	}
	if !strings.Contains(prompt, "2. Hostel fee is 12000 per semester") {
		t.Errorf("second context not numbered:\n%s", prompt)
	}
	if strings.Contains(prompt, noContextPlaceholder) {
		t.Error("placeholder present despite contexts")
	}
	if !strings.Contains(prompt, "User: library timing?") {
		t.Errorf("query not appended under user label:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "Assistant:") {
		t.Errorf("prompt missing trailing generation cue:\n%s", prompt)
	}
}

func TestBuildPromptCapsContextsAtThree(t *testing.T) {
	contexts := []knowledge.Context{
		{Content: "one"}, {Content: "two"}, {Content: "three"}, {Content: "four"},
	}
	prompt := BuildPrompt("q", language.English, contexts)

	if !strings.Contains(prompt, "3. three") {
		t.Error("third context missing")
	}
	if strings.Contains(prompt, "four") {
		t.Error("fourth context should not be rendered")
	}
}

func TestBuildPromptUnknownLanguageFallsBackToEnglish(t *testing.T) {
	prompt := BuildPrompt("q", language.Language("xx"), nil)
	if !strings.Contains(prompt, instructionMarker[language.English]) {
		t.Errorf("unknown language should use the English template:\n%s", prompt)
	}
}

func TestBuildPromptMalayalamLabels(t *testing.T) {
	prompt := BuildPrompt("q", language.Malayalam, nil)
	if !strings.Contains(prompt, "വിവരങ്ങൾ:") || !strings.Contains(prompt, "ഉപയോക്താവ്:") {
		t.Errorf("Malayalam section labels missing:\n%s", prompt)
	}
}
