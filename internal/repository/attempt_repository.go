package repository

import (
	"encoding/json"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByIDAndUser(id string, userID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	return &a, err
}

func (r *AttemptRepository) UpdateCursor(id string, cursor int) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ?", id).
		Update("current_question", cursor).
		Error
}

// RecordAnswer 在一次更新中同时写入答案数组和游标，二者必须保持同步。
// 带乐观锁校验：version 不匹配（并发重复提交）时不更新任何行。
func (r *AttemptRepository) RecordAnswer(id string, version int, answers json.RawMessage, cursor int) error {
	result := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND version = ? AND completed = ?", id, version, false).
		Updates(map[string]interface{}{
			"answers":          answers,
			"current_question": cursor,
			"version":          version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrAttemptConflict
	}
	return nil
}

// Complete 写入完成字段，仅在 completed=false 时生效，保证只完成一次
func (r *AttemptRepository) Complete(id string, score float64, correctAnswers, totalQuestions, durationSeconds int, completedAt time.Time) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":        true,
			"completed_at":     completedAt,
			"score":            score,
			"correct_answers":  correctAnswers,
			"total_questions":  totalQuestions,
			"duration_seconds": durationSeconds,
		}).Error
}

func (r *AttemptRepository) FindCompletedByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) FindCompletedByIDAndUser(id string, userID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("id = ? AND user_id = ? AND completed = ?", id, userID, true).First(&a).Error
	return &a, err
}

func (r *AttemptRepository) FindAllCompleted() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("completed = ?", true).Find(&attempts).Error
	return attempts, err
}
