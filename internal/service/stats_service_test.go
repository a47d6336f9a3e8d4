package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"
)

// seedCompleted 插入一条已完成的记录
func seedCompleted(store *fakeAttemptStore, userID uint, category string, score float64, duration int, completedAt time.Time) {
	attempt := &model.Attempt{
		UserID:          userID,
		Category:        category,
		Difficulty:      "Facile",
		Completed:       true,
		Score:           score,
		CorrectAnswers:  int(score / 10),
		TotalQuestions:  10,
		DurationSeconds: duration,
		StartedAt:       completedAt.Add(-time.Duration(duration) * time.Second),
		CompletedAt:     &completedAt,
	}
	store.Create(attempt)
}

func newStatsService(attempts *fakeAttemptStore, users *fakeUserStore, questions *fakeQuestionStore) *StatsService {
	if questions == nil {
		questions = newFakeQuestionStore()
	}
	return NewStatsService(attempts, users, questions, testConfig())
}

func TestDashboardWithoutAttempts(t *testing.T) {
	svc := newStatsService(newFakeAttemptStore(), newFakeUserStore(), nil)

	stats, err := svc.Dashboard(testUserID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalAttempts != 0 || stats.AverageScore != 0 || stats.BestScore != 0 {
		t.Errorf("empty dashboard = %+v, want all zeros", stats)
	}
	if len(stats.CategoryStats) != 0 {
		t.Errorf("categoryStats = %v, want empty", stats.CategoryStats)
	}
}

func TestDashboardCategoryStats(t *testing.T) {
	attempts := newFakeAttemptStore()
	now := time.Now()
	seedCompleted(attempts, testUserID, "Vision", 80, 120, now.Add(-3*time.Hour))
	seedCompleted(attempts, testUserID, "Vision", 60, 90, now.Add(-2*time.Hour))
	seedCompleted(attempts, testUserID, "Mission", 100, 60, now.Add(-1*time.Hour))
	seedCompleted(attempts, 99, "Valeurs", 50, 60, now) // 其他用户不计入

	svc := newStatsService(attempts, newFakeUserStore(), nil)
	stats, err := svc.Dashboard(testUserID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalAttempts != 3 {
		t.Errorf("totalAttempts = %d, want 3", stats.TotalAttempts)
	}
	if stats.AverageScore != 80 {
		t.Errorf("averageScore = %v, want 80", stats.AverageScore)
	}
	if stats.BestScore != 100 {
		t.Errorf("bestScore = %v, want 100", stats.BestScore)
	}

	vision, ok := stats.CategoryStats["Vision"]
	if !ok || vision.Count != 2 || vision.Average != 70 {
		t.Errorf("Vision = %+v, want {2 70}", vision)
	}
	if _, ok := stats.CategoryStats["Valeurs"]; ok {
		t.Error("Valeurs present despite no attempts for this user")
	}
}

func TestProfileStats(t *testing.T) {
	user := &model.User{Email: "a@b.c", Name: "Anna"}
	user.ID = testUserID
	users := newFakeUserStore(user)

	attempts := newFakeAttemptStore()
	now := time.Now()
	seedCompleted(attempts, testUserID, "Vision", 100, 100, now.Add(-2*time.Hour))
	seedCompleted(attempts, testUserID, "Mission", 100, 80, now.Add(-1*time.Hour))
	seedCompleted(attempts, testUserID, "Mission", 40, 200, now)

	svc := newStatsService(attempts, users, nil)
	profile, err := svc.Profile(testUserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.User.Name != "Anna" {
		t.Errorf("user = %+v", profile.User)
	}
	if profile.TotalAttempts != 3 || profile.PerfectScores != 2 {
		t.Errorf("attempts/perfect = %d/%d, want 3/2", profile.TotalAttempts, profile.PerfectScores)
	}
	if profile.TotalTime != 380 {
		t.Errorf("totalTime = %d, want 380", profile.TotalTime)
	}
	if profile.TotalTimeText != "6m 20s" {
		t.Errorf("totalTimeText = %q, want \"6m 20s\"", profile.TotalTimeText)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	svc := newStatsService(newFakeAttemptStore(), newFakeUserStore(), nil)
	if _, err := svc.Profile(42); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestHistoryOrderedByCompletionDesc(t *testing.T) {
	attempts := newFakeAttemptStore()
	now := time.Now()
	seedCompleted(attempts, testUserID, "Vision", 50, 65, now.Add(-3*time.Hour))
	seedCompleted(attempts, testUserID, "Mission", 90, 125, now.Add(-1*time.Hour))
	seedCompleted(attempts, testUserID, "Valeurs", 70, 45, now.Add(-2*time.Hour))

	svc := newStatsService(attempts, newFakeUserStore(), nil)
	items, err := svc.History(testUserID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	wantOrder := []string{"Mission", "Valeurs", "Vision"}
	for i, want := range wantOrder {
		if items[i].Category != want {
			t.Errorf("items[%d].category = %q, want %q", i, items[i].Category, want)
		}
	}
	if items[0].Duration != "2m 5s" {
		t.Errorf("items[0].duration = %q, want \"2m 5s\"", items[0].Duration)
	}
	if items[0].CompletedAt == nil {
		t.Error("completedAt not copied")
	}
}

func TestHistoryDetailScopedToOwner(t *testing.T) {
	attempts := newFakeAttemptStore()
	now := time.Now()
	seedCompleted(attempts, testUserID, "Vision", 80, 60, now)

	var attemptID string
	for id := range attempts.attempts {
		attemptID = id
	}

	svc := newStatsService(attempts, newFakeUserStore(), nil)
	if _, err := svc.HistoryDetail(2, attemptID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("other user's detail err = %v, want ErrAttemptNotFound", err)
	}
	if _, err := svc.HistoryDetail(testUserID, "inconnu"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("unknown id err = %v, want ErrAttemptNotFound", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	users := newFakeUserStore()
	for i, name := range []string{"Haut", "Egal", "Assidu", "Absent"} {
		u := &model.User{Email: fmt.Sprintf("%d@test.com", i), Name: name}
		u.ID = uint(i + 1)
		users.users[u.ID] = u
	}

	attempts := newFakeAttemptStore()
	now := time.Now()
	// Haut: 平均 90，5 次；Egal: 平均 90，3 次；Assidu: 平均 75，10 次
	for i := 0; i < 5; i++ {
		seedCompleted(attempts, 1, "Vision", 90, 60, now.Add(-time.Duration(i)*time.Minute))
	}
	for i := 0; i < 3; i++ {
		seedCompleted(attempts, 2, "Vision", 90, 60, now.Add(-time.Duration(i)*time.Minute))
	}
	for i := 0; i < 10; i++ {
		seedCompleted(attempts, 3, "Mission", 75, 60, now.Add(-time.Duration(i)*time.Minute))
	}
	// Absent 没有完成记录，不应出现

	svc := newStatsService(attempts, users, nil)
	entries, err := svc.Leaderboard()
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	wantOrder := []string{"Haut", "Egal", "Assidu"}
	for i, want := range wantOrder {
		if entries[i].Name != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
	if entries[0].TotalAttempts != 5 || entries[1].TotalAttempts != 3 {
		t.Errorf("attempt counts = %d/%d, want 5/3", entries[0].TotalAttempts, entries[1].TotalAttempts)
	}
	if entries[2].PerformanceIndex != 75 {
		t.Errorf("entries[2].performanceIndex = %v, want 75", entries[2].PerformanceIndex)
	}
}
