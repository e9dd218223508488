package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeGeneration(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := CodeGeneration("build a queue", "go", "chi", "must be thread safe")
		b := CodeGeneration("build a queue", "go", "chi", "must be thread safe")
		assert.Equal(t, a, b)
	})

	t.Run("AllModifiers", func(t *testing.T) {
		p := CodeGeneration("build a queue", "go", "chi", "must be thread safe")
		assert.Contains(t, p.User, "build a queue")
		assert.Contains(t, p.User, "Programming Language: go")
		assert.Contains(t, p.User, "Framework: chi")
		assert.Contains(t, p.User, "Additional Requirements: must be thread safe")
		assert.NotEmpty(t, p.System)
	})

	t.Run("EmptyModifiersOmitted", func(t *testing.T) {
		p := CodeGeneration("build a queue", "", "", "")
		assert.NotContains(t, p.User, "Programming Language")
		assert.NotContains(t, p.User, "Framework")
		assert.NotContains(t, p.User, "Additional Requirements")
	})

	t.Run("ModifierOrder", func(t *testing.T) {
		p := CodeGeneration("x", "go", "chi", "fast")
		lang := strings.Index(p.User, "Programming Language")
		fw := strings.Index(p.User, "Framework")
		extra := strings.Index(p.User, "Additional Requirements")
		assert.True(t, lang < fw && fw < extra)
	})
}

func TestCodeExplanation(t *testing.T) {
	t.Run("CodeFenced", func(t *testing.T) {
		p := CodeExplanation("func main() {}", "", "")
		assert.Contains(t, p.User, "```\nfunc main() {}\n```")
	})

	t.Run("AudienceBeforeFocus", func(t *testing.T) {
		p := CodeExplanation("x := 1", "performance", "beginner")
		audience := strings.Index(p.User, "Target Audience: beginner")
		focus := strings.Index(p.User, "Focus Areas: performance")
		assert.True(t, audience >= 0 && focus >= 0 && audience < focus)
	})

	t.Run("EmptyModifiersOmitted", func(t *testing.T) {
		p := CodeExplanation("x := 1", "", "")
		assert.NotContains(t, p.User, "Target Audience")
		assert.NotContains(t, p.User, "Focus Areas")
	})
}

func TestCodeReview(t *testing.T) {
	p := CodeReview("x := 1", "security", "sql injection")
	assert.Contains(t, p.User, "Review Type: security")
	assert.Contains(t, p.User, "Specific Concerns: sql injection")
	assert.Contains(t, p.System, "code reviewer")
}

func TestQuestionGeneration(t *testing.T) {
	t.Run("Basics", func(t *testing.T) {
		p := QuestionGeneration("The mitochondria is the powerhouse of the cell.", 5, "easy")
		assert.Contains(t, p.User, "generate 5 study questions")
		assert.Contains(t, p.User, "easy difficulty")
		assert.Contains(t, p.User, difficultyInstructions["easy"])
		assert.Contains(t, p.User, `"questions"`)
	})

	t.Run("UnknownDifficultyFallsBackToMedium", func(t *testing.T) {
		p := QuestionGeneration("content", 3, "impossible")
		assert.Contains(t, p.User, difficultyInstructions["medium"])
	})

	t.Run("LongContentClipped", func(t *testing.T) {
		long := strings.Repeat("a", maxQuestionContentChars+500)
		p := QuestionGeneration(long, 3, "medium")
		assert.Contains(t, p.User, strings.Repeat("a", maxQuestionContentChars))
		assert.NotContains(t, p.User, strings.Repeat("a", maxQuestionContentChars+1))
	})
}

func TestAnswerExplanation(t *testing.T) {
	p := AnswerExplanation("What is 2+2?", "4")
	assert.Contains(t, p.User, "Question: What is 2+2?")
	assert.Contains(t, p.User, "Correct Answer: 4")
}
