package service

import (
	"errors"
	"fmt"
	"math/rand"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type QuizService struct {
	Questions QuestionStore
	Attempts  AttemptStore
	Cfg       *config.Config
}

func NewQuizService(questions QuestionStore, attempts AttemptStore, cfg *config.Config) *QuizService {
	return &QuizService{
		Questions: questions,
		Attempts:  attempts,
		Cfg:       cfg,
	}
}

// QuestionView 当前题目页面数据
type QuestionView struct {
	AttemptID          string         `json:"attemptId"`
	Category           string         `json:"category"`
	Difficulty         string         `json:"difficulty"`
	QuestionNumber     int            `json:"questionNumber"`
	TotalQuestions     int            `json:"totalQuestions"`
	ProgressPercentage int            `json:"progressPercentage"`
	Question           string         `json:"question"`
	Points             int            `json:"points"`
	Options            []model.Option `json:"options"`
}

func (s *QuizService) validCategory(category string) bool {
	for _, c := range s.Cfg.Quiz.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *QuizService) validDifficulty(difficulty string) bool {
	for _, d := range s.Cfg.Quiz.Difficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}

// StartQuiz 校验分类/难度，从匹配题目中不放回地随机抽取固定数量，
// 创建游标为 0、答案数组为定长空槽的新 Attempt。
func (s *QuizService) StartQuiz(userID uint, category, difficulty string) (string, error) {
	if !s.validCategory(category) {
		return "", util.ErrInvalidCategory
	}
	if !s.validDifficulty(difficulty) {
		return "", util.ErrInvalidDifficulty
	}

	questions, err := s.Questions.FindByCategoryAndDifficulty(category, difficulty)
	if err != nil {
		return "", err
	}

	size := s.Cfg.Quiz.QuestionsPerQuiz
	if len(questions) < size {
		return "", fmt.Errorf("%w (%d trouvées, %d requises)", util.ErrNotEnoughQuestions, len(questions), size)
	}

	ids := make([]uint, 0, size)
	for _, idx := range rand.Perm(len(questions))[:size] {
		ids = append(ids, questions[idx].ID)
	}

	attempt := &model.Attempt{
		UserID:     userID,
		Category:   category,
		Difficulty: difficulty,
		StartedAt:  time.Now(),
	}
	if err := attempt.SetQuestionIDs(ids); err != nil {
		return "", err
	}
	// 定长数组，槽位与题目一一对应，未作答为 null
	if err := attempt.SetAnswers(make([]*model.Answer, size)); err != nil {
		return "", err
	}

	if err := s.Attempts.Create(attempt); err != nil {
		return "", err
	}
	return attempt.ID, nil
}

func (s *QuizService) findActiveAttempt(userID uint, attemptID string) (*model.Attempt, error) {
	attempt, err := s.Attempts.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Completed {
		return nil, util.ErrAttemptCompleted
	}
	return attempt, nil
}

// CurrentQuestion 返回游标指向的题目。游标到达末尾时返回 ErrQuizFinished，
// 由调用方转向结算。
func (s *QuizService) CurrentQuestion(userID uint, attemptID string) (*QuestionView, error) {
	attempt, err := s.findActiveAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}

	ids, err := attempt.DecodeQuestionIDs()
	if err != nil {
		return nil, err
	}
	total := len(ids)
	cursor := attempt.CurrentQuestion

	if cursor >= total {
		return nil, util.ErrQuizFinished
	}

	question, err := s.Questions.FindByID(ids[cursor])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	options, err := question.PublicOptions()
	if err != nil {
		return nil, err
	}

	return &QuestionView{
		AttemptID:          attempt.ID,
		Category:           attempt.Category,
		Difficulty:         attempt.Difficulty,
		QuestionNumber:     cursor + 1,
		TotalQuestions:     total,
		ProgressPercentage: (cursor + 1) * 100 / total,
		Question:           question.Text,
		Points:             question.Points,
		Options:            options,
	}, nil
}

// GoBack 游标大于 0 时回退一格，已记录的答案保持不变
func (s *QuizService) GoBack(userID uint, attemptID string) error {
	attempt, err := s.findActiveAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.CurrentQuestion <= 0 {
		return util.ErrCannotGoBack
	}
	return s.Attempts.UpdateCursor(attempt.ID, attempt.CurrentQuestion-1)
}

// SubmitAnswer 判分并写入游标位置的答案槽（回退后重答即原位覆盖），
// 同一次更新中游标前移一格。
func (s *QuizService) SubmitAnswer(userID uint, attemptID, selected string) (bool, error) {
	attempt, err := s.findActiveAttempt(userID, attemptID)
	if err != nil {
		return false, err
	}

	ids, err := attempt.DecodeQuestionIDs()
	if err != nil {
		return false, err
	}
	cursor := attempt.CurrentQuestion
	if cursor >= len(ids) {
		return false, util.ErrQuizFinished
	}

	question, err := s.Questions.FindByID(ids[cursor])
	if err != nil {
		return false, err
	}

	correctAnswer, err := question.CorrectAnswer()
	if err != nil {
		return false, err
	}

	answer := &model.Answer{
		QuestionID:     question.ID,
		SelectedAnswer: selected,
		CorrectAnswer:  correctAnswer,
		IsCorrect:      selected == correctAnswer,
		AnsweredAt:     time.Now(),
	}

	answers, err := attempt.DecodeAnswers()
	if err != nil {
		return false, err
	}
	for len(answers) < len(ids) {
		answers = append(answers, nil)
	}
	answers[cursor] = answer

	if err := attempt.SetAnswers(answers); err != nil {
		return false, err
	}
	if err := s.Attempts.RecordAnswer(attempt.ID, attempt.Version, attempt.Answers, cursor+1); err != nil {
		return false, err
	}
	return answer.IsCorrect, nil
}

// AttemptResult 结算页数据
type AttemptResult struct {
	AttemptID       string         `json:"attemptId"`
	Category        string         `json:"category"`
	Difficulty      string         `json:"difficulty"`
	Score           float64        `json:"score"`
	CorrectAnswers  int            `json:"correctAnswers"`
	TotalQuestions  int            `json:"totalQuestions"`
	DurationSeconds int            `json:"durationSeconds"`
	Duration        string         `json:"duration"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
	DetailedResults []DetailResult `json:"detailedResults"`
}

// Complete 首次到达时计算并持久化完成字段，此后为幂等读：
// 明细从已持久化的数据重建，分数与时长不再改写。
func (s *QuizService) Complete(userID uint, attemptID string) (*AttemptResult, error) {
	attempt, err := s.Attempts.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	ids, err := attempt.DecodeQuestionIDs()
	if err != nil {
		return nil, err
	}
	answers, err := attempt.DecodeAnswers()
	if err != nil {
		return nil, err
	}

	if !attempt.Completed {
		total := len(ids)
		correct := 0
		for _, a := range answers {
			if a != nil && a.IsCorrect {
				correct++
			}
		}
		score := 0.0
		if total > 0 {
			score = float64(correct) / float64(total) * 100
		}
		now := time.Now()
		duration := int(now.Sub(attempt.StartedAt).Seconds())

		if err := s.Attempts.Complete(attempt.ID, score, correct, total, duration, now); err != nil {
			return nil, err
		}

		attempt.Completed = true
		attempt.CompletedAt = &now
		attempt.Score = score
		attempt.CorrectAnswers = correct
		attempt.TotalQuestions = total
		attempt.DurationSeconds = duration
	}

	details, err := buildDetailedResults(s.Questions, ids, answers)
	if err != nil {
		return nil, err
	}

	return &AttemptResult{
		AttemptID:       attempt.ID,
		Category:        attempt.Category,
		Difficulty:      attempt.Difficulty,
		Score:           attempt.Score,
		CorrectAnswers:  attempt.CorrectAnswers,
		TotalQuestions:  attempt.TotalQuestions,
		DurationSeconds: attempt.DurationSeconds,
		Duration:        util.FormatDuration(attempt.DurationSeconds),
		CompletedAt:     attempt.CompletedAt,
		DetailedResults: details,
	}, nil
}
