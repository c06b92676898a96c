package answer

import "strings"

const docDelimiter = "\n---\n"

// PromptBuilder lays out the prompt: the preamble, each retrieved document
// after a "---" delimiter, then the user question and the closing instruction.
type PromptBuilder struct {
	Preamble    string
	Instruction string
}

// Build returns the prompt for question and docs. The output depends only on
// its inputs and the order of docs.
func (p PromptBuilder) Build(question string, docs []string) string {
	var b strings.Builder
	b.WriteString(p.Preamble)
	b.WriteString("\n")
	for _, d := range docs {
		b.WriteString(docDelimiter)
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString(docDelimiter)
	b.WriteString("User Question: ")
	b.WriteString(question)
	b.WriteString("\n")
	b.WriteString(p.Instruction)
	b.WriteString("\n")
	return b.String()
}
