package models

const (
	StrategyVector  = "vector"
	StrategyKeyword = "keyword"

	ContextSeparator  = "\n"
	ErrorAnswerPrefix = "Error: "
)

var (
	// PromptTemplate takes the assistant domain, the retrieved context and the user question.
	PromptTemplate = `You are an AI assistant specializing in %s. Provide concise and informative responses based on the given context.
If the answer is not explicitly mentioned in the context, rely on your general knowledge to provide a reasonable response.
Do not mention that the answer is missing or say "the context does not provide this information."

Context: %s

User: %s
Assistant:`
)
