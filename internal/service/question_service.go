package service

import (
	"context"
	"encoding/json"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	selectionCacheKey = "quiz:selection_counts"
	selectionCacheTTL = 5 * time.Minute
)

type QuestionService struct {
	Questions QuestionStore
	Redis     *redis.Client
	Cfg       *config.Config
}

func NewQuestionService(questions QuestionStore, rdb *redis.Client, cfg *config.Config) *QuestionService {
	return &QuestionService{
		Questions: questions,
		Redis:     rdb,
		Cfg:       cfg,
	}
}

// CategoryOverview 选择页用的分类概览：每个难度的题目数与合计
type CategoryOverview struct {
	Name   string           `json:"name"`
	Levels map[string]int64 `json:"levels"`
	Total  int64            `json:"total"`
}

// SelectionOverview 统计每个 (分类, 难度) 组合的题目数量。
// 结果短时缓存在 Redis 中，缓存不可用时直接查库。
func (s *QuestionService) SelectionOverview(ctx context.Context) ([]CategoryOverview, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, selectionCacheKey).Bytes()
		if err == nil {
			var overview []CategoryOverview
			if err := json.Unmarshal(cached, &overview); err == nil {
				return overview, nil
			}
		}
	}

	overview := make([]CategoryOverview, 0, len(s.Cfg.Quiz.Categories))
	for _, category := range s.Cfg.Quiz.Categories {
		item := CategoryOverview{
			Name:   category,
			Levels: make(map[string]int64, len(s.Cfg.Quiz.Difficulties)),
		}
		for _, difficulty := range s.Cfg.Quiz.Difficulties {
			count, err := s.Questions.CountByCategoryAndDifficulty(category, difficulty)
			if err != nil {
				return nil, err
			}
			item.Levels[difficulty] = count
			item.Total += count
		}
		overview = append(overview, item)
	}

	if s.Redis != nil {
		data, err := json.Marshal(overview)
		if err == nil {
			if err := s.Redis.Set(ctx, selectionCacheKey, data, selectionCacheTTL).Err(); err != nil {
				logger.Log.Warn("selection cache write failed", zap.Error(err))
			}
		}
	}
	return overview, nil
}
