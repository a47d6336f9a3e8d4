package model

import (
	"encoding/json"
	"time"
)

// Answer 嵌入在 Attempt 中的单题作答记录
type Answer struct {
	QuestionID     uint      `json:"questionId"`
	SelectedAnswer string    `json:"selectedAnswer"`
	CorrectAnswer  string    `json:"correctAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// Attempt 一次答题，题目列表在创建时固定，answers 为与题目平行的定长数组，
// 未作答的槽位为 null。cursor(CurrentQuestion) 始终落在 [0, TotalQuestions]。
// swagger:model Attempt
type Attempt struct {
	UUIDBase
	UserID          uint            `gorm:"index;index:idx_user_completed;type:bigint unsigned;not null" json:"userId"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category        string          `gorm:"size:50;not null" json:"category"`
	Difficulty      string          `gorm:"size:50;not null" json:"difficulty"`
	QuestionIDs     json.RawMessage `gorm:"type:json" json:"questionIds"` // JSON: []uint，创建后不可变
	CurrentQuestion int             `gorm:"default:0" json:"currentQuestion"`
	Answers         json.RawMessage `gorm:"type:json" json:"answers"` // JSON: []*Answer，定长
	Completed       bool            `gorm:"default:false;index:idx_user_completed" json:"completed"`
	Version         int             `gorm:"default:0" json:"-"` // 乐观锁计数，防止重复提交双递增
	StartedAt       time.Time       `json:"startedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Score           float64         `json:"score"`
	CorrectAnswers  int             `json:"correctAnswers"`
	TotalQuestions  int             `json:"totalQuestions"`
	DurationSeconds int             `json:"durationSeconds"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) DecodeQuestionIDs() ([]uint, error) {
	var ids []uint
	if len(a.QuestionIDs) == 0 {
		return ids, nil
	}
	err := json.Unmarshal(a.QuestionIDs, &ids)
	return ids, err
}

func (a *Attempt) SetQuestionIDs(ids []uint) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.QuestionIDs = data
	return nil
}

func (a *Attempt) DecodeAnswers() ([]*Answer, error) {
	var answers []*Answer
	if len(a.Answers) == 0 {
		return answers, nil
	}
	err := json.Unmarshal(a.Answers, &answers)
	return answers, err
}

func (a *Attempt) SetAnswers(answers []*Answer) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	a.Answers = data
	return nil
}

// AnsweredCount 已作答槽位数，始终不超过 CurrentQuestion
func (a *Attempt) AnsweredCount() int {
	answers, err := a.DecodeAnswers()
	if err != nil {
		return 0
	}
	count := 0
	for _, ans := range answers {
		if ans != nil {
			count++
		}
	}
	return count
}
