package rag

import (
	"fmt"
	"strings"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
)

// maxPromptContexts caps how many retrieved contexts are rendered into the
// prompt, regardless of how many the caller supplies.
const maxPromptContexts = 3

// noContextPlaceholder is substituted when retrieval produced nothing, so
// the instruction's "only answer from the contexts" rule steers the model
// toward the apology phrase instead of free invention.
const noContextPlaceholder = "No relevant information found."

// Template is the per-language prompt scaffolding. The instruction text
// forbids outside knowledge and names the localized apology phrase; that
// rule is data handed to the model, not something enforced in code.
type Template struct {
	Instruction  string
	ContextLabel string
	UserLabel    string
}

// promptTemplates has one entry per supported language. English doubles as
// the fallback for any lookup miss, so template resolution never fails.
var promptTemplates = map[language.Language]Template{
	language.Malayalam: {
		Instruction: `നിങ്ങൾ ഒരു കോളേജ് അസിസ്റ്റന്റ് ആണ്. ചുവടെ നൽകിയിരിക്കുന്ന വിവരങ്ങൾ (contexts) മാത്രം ഉപയോഗിച്ച് ഉപയോക്താവിന്റെ ചോദ്യത്തിന് ഉത്തരം നൽകുക.
നിങ്ങൾക്ക് പുറത്തുനിന്നുള്ള വിവരങ്ങൾ ഉപയോഗിക്കാൻ പാടില്ല. വിവരങ്ങൾ കണ്ടെത്താനായില്ലെങ്കിൽ, "ക്ഷമിക്കണം, ഈ വിവരം എന്റെ നോളജ് ബേസിൽ ഇല്ല" എന്ന് പറയുക.
എല്ലായ്പ്പോഴും മലയാളത്തിൽ മറുപടി നൽകുക.`,
		ContextLabel: "വിവരങ്ങൾ:",
		UserLabel:    "ഉപയോക്താവ്:",
	},
	language.Manglish: {
		Instruction: `You are a college assistant. Answer the user's question using ONLY the information provided in the contexts below.
Do not use any external knowledge. If information is not found in contexts, say "Sorry, this information is not in my knowledge base."
Always reply in Manglish (Malayalam written in English letters).`,
		ContextLabel: "Contexts:",
		UserLabel:    "User:",
	},
	language.English: {
		Instruction: `You are a college assistant. Answer the user's question using ONLY the information provided in the contexts below.
Do not use any external knowledge. If information is not found in contexts, say "Sorry, this information is not in my knowledge base."
Always reply in English.`,
		ContextLabel: "Contexts:",
		UserLabel:    "User:",
	},
}

// templateFor resolves the template for lang, falling back to English.
func templateFor(lang language.Language) Template {
	if tmpl, ok := promptTemplates[lang]; ok {
		return tmpl
	}
	return promptTemplates[language.English]
}

// BuildPrompt renders the full generation prompt: language instruction, at
// most the first three contexts as a numbered list (or the no-context
// placeholder), and the user query with a trailing generation cue.
// Pure function, no side effects.
func BuildPrompt(query string, lang language.Language, contexts []knowledge.Context) string {
	tmpl := templateFor(lang)

	var contextsText string
	if len(contexts) == 0 {
		contextsText = noContextPlaceholder
	} else {
		shown := contexts
		if len(shown) > maxPromptContexts {
			shown = shown[:maxPromptContexts]
		}
		lines := make([]string, len(shown))
		for i, ctx := range shown {
			lines[i] = fmt.Sprintf("%d. %s", i+1, ctx.Content)
		}
		contextsText = strings.Join(lines, "\n")
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s %s\n\nAssistant:",
		tmpl.Instruction, tmpl.ContextLabel, contextsText, tmpl.UserLabel, query)
}
