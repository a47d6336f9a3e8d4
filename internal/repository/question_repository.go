package repository

import (
	"quiz_icc_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) CreateBatch(questions []model.Question) error {
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) FindByCategoryAndDifficulty(category, difficulty string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("category = ? AND difficulty = ?", category, difficulty).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) CountByCategoryAndDifficulty(category, difficulty string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("category = ? AND difficulty = ?", category, difficulty).
		Count(&count).Error
	return count, err
}

func (r *QuestionRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Count(&count).Error
	return count, err
}

// DeleteAll 清空题库，仅供导入脚本替换数据时使用
func (r *QuestionRepository) DeleteAll() error {
	return r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&model.Question{}).Error
}
