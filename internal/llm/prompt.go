package llm

import (
	"fmt"
	"strings"

	"github.com/karolswdev/reqsmith/internal/project"
)

// UserStoryCount is the number of user stories requested from the model.
const UserStoryCount = 3

// BuildPrompt turns the five form values into the instruction block sent to
// the model. Each value is interpolated exactly once, with no sanitization;
// the fixed instructions never mention an option label so the values stay
// unambiguous in the output.
func BuildPrompt(req project.Request) string {
	var b strings.Builder

	// 1. Project attributes
	fmt.Fprintf(&b, "Project Name: %s\n", req.Name)
	fmt.Fprintf(&b, "Description: %s\n", req.Description)
	fmt.Fprintf(&b, "Industry: %s\n", req.Industry)
	fmt.Fprintf(&b, "Methodology: %s\n", req.Methodology)
	fmt.Fprintf(&b, "Technology: %s\n", req.Technology)
	b.WriteString("\n")

	// 2. Numbered instructions
	fmt.Fprintf(&b, "1. Generate %d clear user stories, each in the form \"As a <role>, I want <goal> so that <benefit>\".\n", UserStoryCount)
	if req.Methodology.FavorsGivenWhenThen() {
		b.WriteString("2. Write acceptance criteria for these user stories using the Given/When/Then format.\n")
	} else {
		b.WriteString("2. Write acceptance criteria for these user stories as numbered, verifiable conditions.\n")
	}
	b.WriteString("3. Provide a short BRD summary covering the objective, scope, stakeholders, and risks.\n")
	b.WriteString("4. Evaluate whether the selected methodology is the right fit for this project.\n")
	b.WriteString("   - If yes, explain why.\n")
	b.WriteString("   - If no, recommend a better alternative methodology and explain why.\n")
	b.WriteString("5. Evaluate whether the selected technology is the right fit for this project.\n")
	b.WriteString("   - If yes, explain why (mention capabilities like workflows, integrations, scalability).\n")
	b.WriteString("   - If no, recommend a better alternative technology and explain why.\n")

	return b.String()
}
