package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"love-letter/internal/content"
)

type gateQuestionResponse struct {
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Choices []string `json:"choices,omitempty"`
}

type gateResponse struct {
	Title     string                 `json:"title,omitempty"`
	Subtitle  string                 `json:"subtitle,omitempty"`
	Questions []gateQuestionResponse `json:"questions"`
}

// GetGate returns the gate questions without their answers.
func (h *Handlers) GetGate(w http.ResponseWriter, _ *http.Request) {
	gate := h.content.Gate

	questions := make([]gateQuestionResponse, 0, len(gate.Questions))
	for _, q := range gate.Questions {
		questions = append(questions, gateQuestionResponse{
			Prompt:  q.Prompt,
			Type:    string(q.Type),
			Choices: q.Choices,
		})
	}

	writeJSON(w, gateResponse{
		Title:     gate.Title,
		Subtitle:  gate.Subtitle,
		Questions: questions,
	})
}

// VerifyGate checks a full set of submitted answers. Choice questions
// expect the selected index, text questions the typed answer. All
// answers must be correct to pass.
func (h *Handlers) VerifyGate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []json.RawMessage `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	gate := h.content.Gate
	valid := len(req.Answers) == len(gate.Questions)
	if valid {
		for i, q := range gate.Questions {
			if !answerMatches(q, req.Answers[i]) {
				valid = false
				break
			}
		}
	}

	if valid {
		writeJSON(w, map[string]bool{"valid": true})
		return
	}
	writeJSON(w, map[string]interface{}{
		"valid":   false,
		"message": gate.ErrorMessage,
	})
}

// answerMatches checks one submitted answer against its question.
func answerMatches(q content.GateQuestion, raw json.RawMessage) bool {
	switch q.Type {
	case content.QuestionChoice:
		var index int
		if err := json.Unmarshal(raw, &index); err != nil {
			return false
		}
		return index == q.AnswerIndex
	case content.QuestionText:
		var answer string
		if err := json.Unmarshal(raw, &answer); err != nil {
			return false
		}
		answer = strings.TrimSpace(answer)
		expected := strings.TrimSpace(q.AnswerText)
		if q.CaseSensitive {
			return answer == expected
		}
		return strings.EqualFold(answer, expected)
	default:
		return false
	}
}
