package services

const (
	notesSystemPrompt = "You are an expert study assistant. Create concise, well-organized study notes " +
		"from the provided content. Extract key concepts, important facts, and main ideas. " +
		"Format the response as clear, structured notes."

	keywordsSystemPrompt = "Extract 5-7 important keywords or key concepts from the provided content. " +
		"Return ONLY a comma-separated list of keywords, nothing else."

	flashcardsSystemPrompt = "You are an expert at creating study flashcards. Generate 5-10 question-answer pairs " +
		"from the provided content. Format each flashcard as 'Q: [question] | A: [answer]' on separate lines. " +
		"Make questions clear and concise, and answers should be brief but complete."
)

func notesUserPrompt(content string) string {
	return "Create comprehensive study notes from this content:\n\n" + content
}

func flashcardsUserPrompt(notes string) string {
	return "Create study flashcards from these notes:\n\n" + notes
}
