package service

import (
	"encoding/json"
	"quiz_icc_backend/internal/model"
	"time"
)

// 服务层依赖的小接口，由 repository 包的 GORM 实现提供，
// 测试中用内存假实现替换。

type QuestionStore interface {
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	FindByCategoryAndDifficulty(category, difficulty string) ([]model.Question, error)
	CountByCategoryAndDifficulty(category, difficulty string) (int64, error)
}

type AttemptStore interface {
	Create(attempt *model.Attempt) error
	FindByIDAndUser(id string, userID uint) (*model.Attempt, error)
	UpdateCursor(id string, cursor int) error
	RecordAnswer(id string, version int, answers json.RawMessage, cursor int) error
	Complete(id string, score float64, correctAnswers, totalQuestions, durationSeconds int, completedAt time.Time) error
	FindCompletedByUser(userID uint) ([]model.Attempt, error)
	FindCompletedByIDAndUser(id string, userID uint) (*model.Attempt, error)
	FindAllCompleted() ([]model.Attempt, error)
}

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdateLastLogin(userID uint) error
	UpdateAvatar(userID uint, url string) error
	FindAll() ([]model.User, error)
}
