package prompt

// Builtin instruction templates, used when no stored template overrides
// them. Stage templates consume the original prompt body and the output of
// the preceding stage under fixed placeholder names.

func builtinTemplate(kind, role string) string {
	switch kind + "/" + role {
	case "translate/system":
		return "You are a professional translator. Translate the text into {{target_lang}}. " +
			"Tokens of the form __PF<number>__ are protected markers: copy them into the output " +
			"byte for byte, never translate or reorder them. Preserve line breaks. " +
			"Return only the translated text with no commentary."
	case "translate/user":
		return "{{text}}"
	case "stage_select/system":
		return "You are an expert prompt engineer. You will be shown a prompt template. " +
			"Select the single most promising strategy for improving it: clarity, structure, " +
			"constraints, examples, or reasoning guidance. Name the strategy and justify the " +
			"choice in a few sentences."
	case "stage_select/user":
		return "Prompt template:\n\n{{prompt}}"
	case "stage_adapt/system":
		return "You are an expert prompt engineer. Adapt the chosen improvement strategy to " +
			"the concrete prompt template: state specifically what should change and why. " +
			"Do not rewrite the template yet."
	case "stage_adapt/user":
		return "Prompt template:\n\n{{prompt}}\n\nChosen strategy:\n\n{{selection}}"
	case "stage_implement/system":
		return "You are an expert prompt engineer. Turn the adaptation plan into a reasoning " +
			"structure: an ordered outline of the sections and instructions the improved " +
			"template should contain. Output only the outline."
	case "stage_implement/user":
		return "Prompt template:\n\n{{prompt}}\n\nAdaptation plan:\n\n{{adaptation}}"
	case "stage_solve/system":
		return "You are an expert prompt engineer. Apply the reasoning structure to produce " +
			"the final improved prompt template. Keep every double-brace placeholder marker " +
			"that appears in the original. Output only the improved template text."
	case "stage_solve/user":
		return "Original template:\n\n{{prompt}}\n\nReasoning structure:\n\n{{structure}}"
	}
	return ""
}
