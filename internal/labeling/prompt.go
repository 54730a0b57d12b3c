package labeling

// BuildPrompt returns the reviewer prompt for a style rubric. The model is told
// to answer with a bare {"preference": ...} object; the parser still tolerates
// answers that ignore this.
func BuildPrompt(style string) string {
	return "You are an art reviewer. Follow the style guidance below and choose the single best " +
		"preference label." +
		"\nReturn only a strict JSON object in the format {\"preference\": \"<label>\"}. " +
		"Do not include explanations or additional fields." +
		"\n\nStyle guidance:\n" + style
}
