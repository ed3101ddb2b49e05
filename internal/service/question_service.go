package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
)

const maxQuestionRunes = 150

// QuestionService synthesizes the next interview question
type QuestionService struct {
	poller *JobPoller
	traits *model.TraitTable
}

// NewQuestionService creates a new question service
func NewQuestionService(poller *JobPoller, traits *model.TraitTable) *QuestionService {
	return &QuestionService{poller: poller, traits: traits}
}

// Generate asks the oracle for a question probing dim, given the transcript so far
func (s *QuestionService) Generate(ctx context.Context, session *model.Session, dim model.TraitDimension) (string, error) {
	text, err := s.poller.RunJob(ctx, oracle.Request{
		Kind:         model.JobGenerate,
		Instructions: buildQuestionInstructions(),
		Input:        s.buildQuestionPrompt(session, dim),
		Trait:        dim,
	})
	if err != nil {
		return "", err
	}

	question := fitQuestion(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`)), maxQuestionRunes)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	return question, nil
}

// fitQuestion caps text at max runes. Overlong output keeps everything up to the last
// question mark that fits, or else is cut at a word boundary and marked with an ellipsis.
func fitQuestion(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	head := runes[:max]
	for i := len(head) - 1; i > 0; i-- {
		if head[i] == '?' {
			return string(head[:i+1])
		}
	}

	head = runes[:max-1]
	cut := len(head)
	for i := len(head) - 1; i > 0; i-- {
		if unicode.IsSpace(head[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(head[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}

func buildQuestionInstructions() string {
	return fmt.Sprintf(`You are an interviewer assessing the twelve components of GRIT.
Open with a brief empathetic reaction to the previous answer, then continue in the same sentence with one concrete, indirect question.
Output a single sentence of at most %d characters and nothing else.`, maxQuestionRunes)
}

func (s *QuestionService) buildQuestionPrompt(session *model.Session, dim model.TraitDimension) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	b.WriteString(formatTranscript(session.Turns))
	fmt.Fprintf(&b, "\nAlready assessed traits: %s\n", probedList(session, s.traits))
	fmt.Fprintf(&b, "Ask the next question to assess trait %d (%s).", dim, s.traits.Label(dim))
	return b.String()
}

// formatTranscript renders answered turns as Q1:/A1: pairs
func formatTranscript(turns []model.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		if !t.Answered() {
			continue
		}
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", t.Index, t.Question, t.Index, t.Answer)
	}
	return b.String()
}

func probedList(session *model.Session, traits *model.TraitTable) string {
	if len(session.Scores) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(session.Scores))
	for _, r := range session.Scores {
		labels = append(labels, fmt.Sprintf("%d (%s)", r.Dimension, traits.Label(r.Dimension)))
	}
	return strings.Join(labels, ", ")
}
