// Package prompt formats task inputs into system/user message pairs. All
// formatting is pure and deterministic; optional modifiers are appended only
// when non-empty, in a fixed order.
package prompt

import (
	"fmt"
	"strings"
)

// Pair is one formatted prompt: a system message and a user message.
type Pair struct {
	System string
	User   string
}

const codeGenerationSystem = "You are an expert software developer and code generator. " +
	"Your task is to generate high-quality, production-ready code based on user requirements.\n\n" +
	"Guidelines:\n" +
	"- Write clean, readable, and well-documented code\n" +
	"- Follow best practices and conventions for the specified language/framework\n" +
	"- Include proper error handling where appropriate\n" +
	"- Add helpful comments to explain complex logic\n" +
	"- Ensure code is secure and follows security best practices\n" +
	"- Make the code modular and maintainable\n\n" +
	"Format your response with:\n" +
	"1. Brief explanation of the approach\n" +
	"2. The complete code implementation\n" +
	"3. Usage examples if applicable\n" +
	"4. Any important notes or considerations"

// CodeGeneration formats a code-generation request.
func CodeGeneration(description, language, framework, additionalRequirements string) Pair {
	var user strings.Builder
	fmt.Fprintf(&user, "Generate code for the following requirement:\n\n%s", description)

	if language != "" {
		fmt.Fprintf(&user, "\n\nProgramming Language: %s", language)
	}
	if framework != "" {
		fmt.Fprintf(&user, "\nFramework: %s", framework)
	}
	if additionalRequirements != "" {
		fmt.Fprintf(&user, "\nAdditional Requirements: %s", additionalRequirements)
	}

	return Pair{System: codeGenerationSystem, User: user.String()}
}

const codeExplanationSystem = "You are an expert software engineer and technical educator. " +
	"Your task is to explain code in a clear, comprehensive, and educational manner.\n\n" +
	"Guidelines:\n" +
	"- Provide clear explanations that are appropriate for the target audience\n" +
	"- Break down complex concepts into understandable parts\n" +
	"- Explain the purpose and functionality of each major component\n" +
	"- Highlight important patterns, best practices, or potential issues\n" +
	"- Use examples and analogies when helpful\n" +
	"- Structure your explanation logically from high-level overview to details\n\n" +
	"Format your response with:\n" +
	"1. High-level overview of what the code does\n" +
	"2. Step-by-step breakdown of the logic\n" +
	"3. Explanation of key concepts or patterns used\n" +
	"4. Potential improvements or considerations\n" +
	"5. Summary of key takeaways"

// CodeExplanation formats a code-explanation request.
func CodeExplanation(code, focusAreas, targetAudience string) Pair {
	var user strings.Builder
	fmt.Fprintf(&user, "Please explain the following code:\n\n```\n%s\n```", code)

	if targetAudience != "" {
		fmt.Fprintf(&user, "\n\nTarget Audience: %s", targetAudience)
	}
	if focusAreas != "" {
		fmt.Fprintf(&user, "\nFocus Areas: %s", focusAreas)
	}

	return Pair{System: codeExplanationSystem, User: user.String()}
}

const codeReviewSystem = "You are an expert software developer and code reviewer. " +
	"Your task is to provide thorough, constructive code reviews that help improve " +
	"code quality, security, and maintainability.\n\n" +
	"Guidelines:\n" +
	"- Provide specific, actionable feedback\n" +
	"- Point out both positive aspects and areas for improvement\n" +
	"- Consider security, performance, readability, and maintainability\n" +
	"- Suggest concrete improvements with examples when possible\n" +
	"- Prioritize feedback by importance (critical, important, nice-to-have)\n" +
	"- Be constructive and educational in your tone\n\n" +
	"Format your response with:\n" +
	"1. Overall assessment summary\n" +
	"2. Critical issues (security, bugs)\n" +
	"3. Important improvements (performance, maintainability)\n" +
	"4. Code quality suggestions (style, readability)\n" +
	"5. Positive aspects worth highlighting"

// CodeReview formats a code-review request.
func CodeReview(code, reviewType, specificConcerns string) Pair {
	var user strings.Builder
	fmt.Fprintf(&user, "Please review the following code:\n\n```\n%s\n```", code)

	if reviewType != "" {
		fmt.Fprintf(&user, "\n\nReview Type: %s", reviewType)
	}
	if specificConcerns != "" {
		fmt.Fprintf(&user, "\nSpecific Concerns: %s", specificConcerns)
	}

	return Pair{System: codeReviewSystem, User: user.String()}
}

const questionGenerationSystem = "You are an expert educator who creates high-quality study questions. " +
	"Always respond with valid JSON format as specified."

// Document content beyond this is dropped to stay inside token limits.
const maxQuestionContentChars = 3000

var difficultyInstructions = map[string]string{
	"easy":   "Focus on basic facts, definitions, and simple recall questions.",
	"medium": "Include application questions and moderate analysis of concepts.",
	"hard":   "Create complex analysis, synthesis, and evaluation questions.",
}

// QuestionGeneration formats a study-question generation request.
func QuestionGeneration(content string, numQuestions int, difficulty string) Pair {
	instruction, ok := difficultyInstructions[difficulty]
	if !ok {
		instruction = difficultyInstructions["medium"]
	}
	if len(content) > maxQuestionContentChars {
		content = content[:maxQuestionContentChars]
	}

	user := fmt.Sprintf(`Based on the following document content, generate %d study questions at %s difficulty level.
%s

Document Content:
%s

Please generate questions in the following JSON format:
{
    "questions": [
        {
            "question": "Question text here?",
            "type": "multiple_choice",
            "options": ["Option A", "Option B", "Option C", "Option D"],
            "correct_answer": "Option A",
            "explanation": "Explanation of why this answer is correct"
        },
        {
            "question": "Another question?",
            "type": "short_answer",
            "correct_answer": "Expected answer",
            "explanation": "Explanation of the answer"
        }
    ]
}

Question types can be: "multiple_choice", "short_answer", or "true_false"
For multiple_choice questions, provide 4 options.
For true_false questions, correct_answer should be "True" or "False".
Always include explanations.`, numQuestions, difficulty, instruction, content)

	return Pair{System: questionGenerationSystem, User: user}
}

const answerExplanationSystem = "You are an expert educator who provides clear, helpful explanations."

// AnswerExplanation formats an explanation request for a question-answer pair.
func AnswerExplanation(question, answer string) Pair {
	user := fmt.Sprintf(`Please provide a clear and educational explanation for why the following answer is correct:

Question: %s
Correct Answer: %s

Provide a concise but thorough explanation that helps a student understand the concept.`, question, answer)

	return Pair{System: answerExplanationSystem, User: user}
}
