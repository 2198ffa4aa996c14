package rag

import (
	"fmt"

	"document-qa/internal/models"
)

// Composer renders the prompt sent to the language model.
type Composer struct {
	Domain string
}

func NewComposer(domain string) Composer {
	return Composer{Domain: domain}
}

// Compose places the instruction, the context and the question in that order.
// The context may be empty.
func (c Composer) Compose(question, context string) string {
	return fmt.Sprintf(models.PromptTemplate, c.Domain, context, question)
}
