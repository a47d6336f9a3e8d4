package service

import (
	"errors"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"
	"sort"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type StatsService struct {
	Attempts  AttemptStore
	Users     UserStore
	Questions QuestionStore
	Cfg       *config.Config
}

func NewStatsService(attempts AttemptStore, users UserStore, questions QuestionStore, cfg *config.Config) *StatsService {
	return &StatsService{
		Attempts:  attempts,
		Users:     users,
		Questions: questions,
		Cfg:       cfg,
	}
}

type CategoryStat struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

type DashboardStats struct {
	TotalAttempts int                     `json:"totalAttempts"`
	AverageScore  float64                 `json:"averageScore"`
	BestScore     float64                 `json:"bestScore"`
	CategoryStats map[string]CategoryStat `json:"categoryStats"`
}

type ProfileStats struct {
	User          *model.User             `json:"user"`
	TotalAttempts int                     `json:"totalAttempts"`
	AverageScore  float64                 `json:"averageScore"`
	BestScore     float64                 `json:"bestScore"`
	TotalTime     int                     `json:"totalTimeSeconds"`
	TotalTimeText string                  `json:"totalTime"`
	PerfectScores int                     `json:"perfectScores"`
	CategoryStats map[string]CategoryStat `json:"categoryStats"`
}

// categoryStats 按配置的分类枚举统计，只保留至少有一次记录的分类
func (s *StatsService) categoryStats(attempts []model.Attempt) map[string]CategoryStat {
	stats := make(map[string]CategoryStat)
	for _, category := range s.Cfg.Quiz.Categories {
		count := 0
		total := 0.0
		for _, a := range attempts {
			if a.Category == category {
				count++
				total += a.Score
			}
		}
		if count > 0 {
			stats[category] = CategoryStat{
				Count:   count,
				Average: total / float64(count),
			}
		}
	}
	return stats
}

func meanBest(attempts []model.Attempt) (mean, best float64) {
	if len(attempts) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, a := range attempts {
		total += a.Score
		if a.Score > best {
			best = a.Score
		}
	}
	return total / float64(len(attempts)), best
}

// Dashboard 无任何完成记录时各项均为 0，而不是错误
func (s *StatsService) Dashboard(userID uint) (*DashboardStats, error) {
	attempts, err := s.Attempts.FindCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	mean, best := meanBest(attempts)
	return &DashboardStats{
		TotalAttempts: len(attempts),
		AverageScore:  mean,
		BestScore:     best,
		CategoryStats: s.categoryStats(attempts),
	}, nil
}

func (s *StatsService) Profile(userID uint) (*ProfileStats, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	attempts, err := s.Attempts.FindCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	mean, best := meanBest(attempts)
	totalTime := 0
	perfect := 0
	for _, a := range attempts {
		totalTime += a.DurationSeconds
		if a.Score == 100 {
			perfect++
		}
	}

	return &ProfileStats{
		User:          user,
		TotalAttempts: len(attempts),
		AverageScore:  mean,
		BestScore:     best,
		TotalTime:     totalTime,
		TotalTimeText: util.FormatDuration(totalTime),
		PerfectScores: perfect,
		CategoryStats: s.categoryStats(attempts),
	}, nil
}

// HistoryItem 历史列表条目
type HistoryItem struct {
	ID              string     `json:"id"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	Score           float64    `json:"score"`
	CorrectAnswers  int        `json:"correctAnswers"`
	TotalQuestions  int        `json:"totalQuestions"`
	DurationSeconds int        `json:"durationSeconds"`
	Duration        string     `json:"duration"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// History 按完成时间倒序返回用户的已完成记录
func (s *StatsService) History(userID uint) ([]HistoryItem, error) {
	attempts, err := s.Attempts.FindCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(attempts))
	for _, attempt := range attempts {
		var item HistoryItem
		if err := copier.Copy(&item, &attempt); err != nil {
			return nil, err
		}
		item.Duration = util.FormatDuration(attempt.DurationSeconds)
		items = append(items, item)
	}
	return items, nil
}

// HistoryDetail 历史详情，仅限本人且已完成的记录
func (s *StatsService) HistoryDetail(userID uint, attemptID string) (*AttemptResult, error) {
	attempt, err := s.Attempts.FindCompletedByIDAndUser(attemptID, userID)
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

// LeaderboardEntry 排行榜条目，performance index 即平均分
type LeaderboardEntry struct {
	Name             string  `json:"name"`
	Avatar           string  `json:"avatar"`
	TotalAttempts    int     `json:"totalAttempts"`
	AverageScore     float64 `json:"averageScore"`
	BestScore        float64 `json:"bestScore"`
	PerformanceIndex float64 `json:"performanceIndex"`
}

// Leaderboard 对所有至少完成一次的用户按 (平均分, 次数) 降序排序；
// 两项都相等的条目相对顺序不作保证。
func (s *StatsService) Leaderboard() ([]LeaderboardEntry, error) {
	users, err := s.Users.FindAll()
	if err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.FindAllCompleted()
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint][]model.Attempt)
	for _, a := range attempts {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		userAttempts := byUser[user.ID]
		if len(userAttempts) == 0 {
			continue
		}
		mean, best := meanBest(userAttempts)
		entries = append(entries, LeaderboardEntry{
			Name:             user.Name,
			Avatar:           user.Avatar,
			TotalAttempts:    len(userAttempts),
			AverageScore:     mean,
			BestScore:        best,
			PerformanceIndex: mean,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PerformanceIndex != entries[j].PerformanceIndex {
			return entries[i].PerformanceIndex > entries[j].PerformanceIndex
		}
		return entries[i].TotalAttempts > entries[j].TotalAttempts
	})
	return entries, nil
}
