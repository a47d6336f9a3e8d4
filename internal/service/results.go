package service

import (
	"quiz_icc_backend/internal/model"
)

// DetailResult 单题的逐题明细，结算页与历史详情共用
type DetailResult struct {
	Question      string         `json:"question"`
	Options       []model.Option `json:"options"`
	UserAnswer    *string        `json:"userAnswer"`
	CorrectAnswer string         `json:"correctAnswer"`
	IsCorrect     bool           `json:"isCorrect"`
}

// buildDetailedResults 按题目顺序重建逐题明细。答案槽为空的题目
// 记为未作答（userAnswer 为 null，isCorrect 为 false）。
func buildDetailedResults(questions QuestionStore, ids []uint, answers []*model.Answer) ([]DetailResult, error) {
	results := make([]DetailResult, 0, len(ids))
	for i, qid := range ids {
		question, err := questions.FindByID(qid)
		if err != nil {
			return nil, err
		}

		options, err := question.DecodeOptions()
		if err != nil {
			return nil, err
		}
		correctAnswer, err := question.CorrectAnswer()
		if err != nil {
			return nil, err
		}

		detail := DetailResult{
			Question:      question.Text,
			Options:       options,
			CorrectAnswer: correctAnswer,
		}
		if i < len(answers) && answers[i] != nil {
			detail.UserAnswer = &answers[i].SelectedAnswer
			detail.IsCorrect = answers[i].IsCorrect
		}
		results = append(results, detail)
	}
	return results, nil
}
