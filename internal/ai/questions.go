package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codementor-ai/codementor/internal/ai/gateway"
	"github.com/codementor-ai/codementor/internal/ai/prompt"
)

// GenerateQuestionsRequest asks for study questions over document content.
type GenerateQuestionsRequest struct {
	Content      string
	NumQuestions int
	Difficulty   string // easy, medium, hard
	UserID       string
}

// GeneratedQuestion is one parsed question from the model's JSON response.
type GeneratedQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty"`
}

type questionPayload struct {
	Questions []struct {
		Question      string   `json:"question"`
		Type          string   `json:"type"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
	} `json:"questions"`
}

// Question generation samples at a higher temperature than the default.
var questionTemperature = float32(0.7)

// GenerateQuestions produces study questions from document content. Never
// cached: each run is expected to yield a fresh question set.
func (s *Service) GenerateQuestions(ctx context.Context, req GenerateQuestionsRequest) ([]GeneratedQuestion, error) {
	op := s.monitor.Begin("generate_questions", req.UserID, s.cfg.Model)
	defer op.End()

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	p := prompt.QuestionGeneration(req.Content, req.NumQuestions, difficulty)

	response, err := s.generate(ctx, p, gateway.GenerateParams{Temperature: &questionTemperature})
	if err != nil {
		op.Fail(err)
		return nil, s.operationError("generate questions", err)
	}

	inputTokens := s.counter.CountTokens(p.System + p.User)
	outputTokens := s.counter.CountTokens(response)
	op.SetTokens(inputTokens, outputTokens)

	questions, err := parseQuestions(response, difficulty)
	if err != nil {
		op.Fail(err)
		return nil, &gateway.Error{
			Kind:    gateway.KindUpstream,
			Message: "AI service returned invalid response format",
			Err:     err,
		}
	}

	return questions, nil
}

func parseQuestions(response, difficulty string) ([]GeneratedQuestion, error) {
	var payload questionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON: %w", err)
	}

	questions := make([]GeneratedQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		questionType := q.Type
		if questionType == "" {
			questionType = "multiple_choice"
		}
		questions = append(questions, GeneratedQuestion{
			QuestionText:  q.Question,
			QuestionType:  questionType,
			CorrectAnswer: q.CorrectAnswer,
			Options:       q.Options,
			Explanation:   q.Explanation,
			Difficulty:    difficulty,
		})
	}
	return questions, nil
}

// Models sometimes wrap JSON in a markdown fence despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var explanationTemperature = float32(0.5)

// GenerateAnswerExplanation produces a fresh explanation for a
// question-answer pair.
func (s *Service) GenerateAnswerExplanation(ctx context.Context, question, answer, userID string) (string, error) {
	op := s.monitor.Begin("generate_answer_explanation", userID, s.cfg.Model)
	defer op.End()

	p := prompt.AnswerExplanation(question, answer)

	response, err := s.generate(ctx, p, gateway.GenerateParams{
		MaxTokens:   300,
		Temperature: &explanationTemperature,
	})
	if err != nil {
		op.Fail(err)
		return "", s.operationError("generate explanation", err)
	}

	inputTokens := s.counter.CountTokens(p.System + p.User)
	outputTokens := s.counter.CountTokens(response)
	op.SetTokens(inputTokens, outputTokens)

	return strings.TrimSpace(response), nil
}
