package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"

	"gorm.io/gorm"
)

// 内存假实现，行为对齐 repository 包的 GORM 版本：
// 未命中返回 gorm.ErrRecordNotFound，RecordAnswer 做版本比对。

type fakeQuestionStore struct {
	questions map[uint]*model.Question
}

func newFakeQuestionStore(questions ...*model.Question) *fakeQuestionStore {
	store := &fakeQuestionStore{questions: make(map[uint]*model.Question)}
	for _, q := range questions {
		store.questions[q.ID] = q
	}
	return store
}

func (s *fakeQuestionStore) FindByID(id uint) (*model.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (s *fakeQuestionStore) FindByIDs(ids []uint) ([]model.Question, error) {
	result := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (s *fakeQuestionStore) FindByCategoryAndDifficulty(category, difficulty string) ([]model.Question, error) {
	var result []model.Question
	ids := make([]uint, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		q := s.questions[id]
		if q.Category == category && q.Difficulty == difficulty {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (s *fakeQuestionStore) CountByCategoryAndDifficulty(category, difficulty string) (int64, error) {
	matched, _ := s.FindByCategoryAndDifficulty(category, difficulty)
	return int64(len(matched)), nil
}

type fakeAttemptStore struct {
	attempts map[string]*model.Attempt
	seq      int

	// afterFind 在 FindByIDAndUser 返回前执行，用于模拟并发交错
	afterFind func(*model.Attempt)
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[string]*model.Attempt)}
}

func (s *fakeAttemptStore) Create(attempt *model.Attempt) error {
	if attempt.ID == "" {
		s.seq++
		attempt.ID = fmt.Sprintf("attempt-%d", s.seq)
	}
	stored := *attempt
	s.attempts[attempt.ID] = &stored
	return nil
}

func (s *fakeAttemptStore) FindByIDAndUser(id string, userID uint) (*model.Attempt, error) {
	stored, ok := s.attempts[id]
	if !ok || stored.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	result := *stored
	if s.afterFind != nil {
		s.afterFind(stored)
	}
	return &result, nil
}

func (s *fakeAttemptStore) UpdateCursor(id string, cursor int) error {
	stored, ok := s.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CurrentQuestion = cursor
	return nil
}

func (s *fakeAttemptStore) RecordAnswer(id string, version int, answers json.RawMessage, cursor int) error {
	stored, ok := s.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != version || stored.Completed {
		return util.ErrAttemptConflict
	}
	stored.Answers = answers
	stored.CurrentQuestion = cursor
	stored.Version++
	return nil
}

func (s *fakeAttemptStore) Complete(id string, score float64, correctAnswers, totalQuestions, durationSeconds int, completedAt time.Time) error {
	stored, ok := s.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Completed {
		return nil
	}
	stored.Completed = true
	stored.Score = score
	stored.CorrectAnswers = correctAnswers
	stored.TotalQuestions = totalQuestions
	stored.DurationSeconds = durationSeconds
	stored.CompletedAt = &completedAt
	return nil
}

func (s *fakeAttemptStore) FindCompletedByUser(userID uint) ([]model.Attempt, error) {
	var result []model.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID && a.Completed {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CompletedAt.After(*result[j].CompletedAt)
	})
	return result, nil
}

func (s *fakeAttemptStore) FindCompletedByIDAndUser(id string, userID uint) (*model.Attempt, error) {
	stored, ok := s.attempts[id]
	if !ok || stored.UserID != userID || !stored.Completed {
		return nil, gorm.ErrRecordNotFound
	}
	result := *stored
	return &result, nil
}

func (s *fakeAttemptStore) FindAllCompleted() ([]model.Attempt, error) {
	var result []model.Attempt
	for _, a := range s.attempts {
		if a.Completed {
			result = append(result, *a)
		}
	}
	return result, nil
}

type fakeUserStore struct {
	users map[uint]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[uint]*model.User)}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (s *fakeUserStore) Create(user *model.User) error {
	if user.ID == 0 {
		user.ID = uint(len(s.users) + 1)
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *fakeUserStore) FindByID(id uint) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	result := *u
	return &result, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) UpdateLastLogin(userID uint) error {
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = time.Now()
	return nil
}

func (s *fakeUserStore) UpdateAvatar(userID uint, url string) error {
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Avatar = url
	return nil
}

func (s *fakeUserStore) FindAll() ([]model.User, error) {
	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]model.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.users[id])
	}
	return result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{
			QuestionsPerQuiz: 10,
			Categories:       []string{"Vision", "Valeurs", "Mission"},
			Difficulties:     []string{"Facile", "Intermédiaire", "Difficile"},
		},
	}
}

// newTestQuestion 构造含一个正确选项和若干干扰项的题目
func newTestQuestion(id uint, category, difficulty, text, correct string, wrong ...string) *model.Question {
	opts := []model.Option{{Text: correct, IsCorrect: true}}
	for _, w := range wrong {
		opts = append(opts, model.Option{Text: w})
	}
	data, err := json.Marshal(opts)
	if err != nil {
		panic(err)
	}
	q := &model.Question{
		Category:   category,
		Difficulty: difficulty,
		Points:     1,
		Text:       text,
		Options:    data,
	}
	q.ID = id
	return q
}
