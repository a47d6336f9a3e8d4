package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"
)

const testUserID uint = 1

// seedQuestions 向假题库填充 n 道 Vision/Facile 题目，
// 第 i 题的正确答案为 "bonne-i"。
func seedQuestions(n int) *fakeQuestionStore {
	store := newFakeQuestionStore()
	for i := 1; i <= n; i++ {
		q := newTestQuestion(uint(i), "Vision", "Facile",
			fmt.Sprintf("Question %d ?", i),
			fmt.Sprintf("bonne-%d", i),
			"mauvaise-a", "mauvaise-b", "mauvaise-c")
		store.questions[q.ID] = q
	}
	return store
}

func newQuizService(questions *fakeQuestionStore, attempts *fakeAttemptStore) *QuizService {
	return NewQuizService(questions, attempts, testConfig())
}

func TestStartQuizRejectsInvalidSelection(t *testing.T) {
	svc := newQuizService(seedQuestions(12), newFakeAttemptStore())

	tests := []struct {
		name       string
		category   string
		difficulty string
		wantErr    error
	}{
		{"未知分类", "Histoire", "Facile", util.ErrInvalidCategory},
		{"空分类", "", "Facile", util.ErrInvalidCategory},
		{"未知难度", "Vision", "Expert", util.ErrInvalidDifficulty},
		{"分类大小写敏感", "vision", "Facile", util.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.StartQuiz(testUserID, tt.category, tt.difficulty)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("StartQuiz(%q, %q) err = %v, want %v", tt.category, tt.difficulty, err, tt.wantErr)
			}
		})
	}
}

func TestStartQuizNotEnoughQuestions(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(3), attempts)

	_, err := svc.StartQuiz(testUserID, "Vision", "Facile")
	if !errors.Is(err, util.ErrNotEnoughQuestions) {
		t.Fatalf("err = %v, want ErrNotEnoughQuestions", err)
	}
	if !strings.Contains(err.Error(), "3 trouvées, 10 requises") {
		t.Errorf("err message = %q, want counts in message", err.Error())
	}
	if len(attempts.attempts) != 0 {
		t.Errorf("attempt was persisted despite insufficient pool")
	}
}

func TestStartQuizSelectsDistinctQuestions(t *testing.T) {
	questions := seedQuestions(15)
	attempts := newFakeAttemptStore()
	svc := newQuizService(questions, attempts)

	id, err := svc.StartQuiz(testUserID, "Vision", "Facile")
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	attempt := attempts.attempts[id]
	if attempt == nil {
		t.Fatal("attempt not persisted")
	}
	ids, err := attempt.DecodeQuestionIDs()
	if err != nil {
		t.Fatalf("DecodeQuestionIDs: %v", err)
	}
	if len(ids) != 10 {
		t.Fatalf("len(questionIDs) = %d, want 10", len(ids))
	}
	seen := make(map[uint]bool)
	for _, qid := range ids {
		if seen[qid] {
			t.Errorf("question %d selected twice", qid)
		}
		seen[qid] = true
		if _, ok := questions.questions[qid]; !ok {
			t.Errorf("question %d not in the matching pool", qid)
		}
	}

	answers, err := attempt.DecodeAnswers()
	if err != nil {
		t.Fatalf("DecodeAnswers: %v", err)
	}
	if len(answers) != 10 {
		t.Fatalf("len(answers) = %d, want 10", len(answers))
	}
	for i, a := range answers {
		if a != nil {
			t.Errorf("answers[%d] not null at start", i)
		}
	}
	if attempt.CurrentQuestion != 0 {
		t.Errorf("cursor = %d, want 0", attempt.CurrentQuestion)
	}
	if attempt.Completed {
		t.Error("new attempt marked completed")
	}
}

func TestCurrentQuestionHidesCorrectFlag(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)

	id, err := svc.StartQuiz(testUserID, "Vision", "Facile")
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	view, err := svc.CurrentQuestion(testUserID, id)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if view.QuestionNumber != 1 || view.TotalQuestions != 10 {
		t.Errorf("question %d/%d, want 1/10", view.QuestionNumber, view.TotalQuestions)
	}
	if view.ProgressPercentage != 10 {
		t.Errorf("progress = %d, want 10", view.ProgressPercentage)
	}
	if len(view.Options) != 4 {
		t.Fatalf("len(options) = %d, want 4", len(view.Options))
	}
	for _, opt := range view.Options {
		if opt.IsCorrect {
			t.Errorf("option %q leaks the correct flag", opt.Text)
		}
	}
}

func TestCurrentQuestionErrors(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)

	if _, err := svc.CurrentQuestion(testUserID, "inconnu"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("unknown attempt err = %v, want ErrAttemptNotFound", err)
	}

	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")
	if _, err := svc.CurrentQuestion(2, id); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("other user's attempt err = %v, want ErrAttemptNotFound", err)
	}

	// 游标到达末尾应提示结算
	attempts.attempts[id].CurrentQuestion = 10
	if _, err := svc.CurrentQuestion(testUserID, id); !errors.Is(err, util.ErrQuizFinished) {
		t.Errorf("cursor at end err = %v, want ErrQuizFinished", err)
	}
}

// answerCurrent 取当前题的正确或错误答案并提交
func answerCurrent(t *testing.T, svc *QuizService, attempts *fakeAttemptStore, id string, correct bool) bool {
	t.Helper()
	attempt := attempts.attempts[id]
	ids, _ := attempt.DecodeQuestionIDs()
	qid := ids[attempt.CurrentQuestion]
	selected := fmt.Sprintf("bonne-%d", qid)
	if !correct {
		selected = "mauvaise-a"
	}
	got, err := svc.SubmitAnswer(testUserID, id, selected)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	return got
}

func TestSubmitAnswerAdvancesCursorInLockstep(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	if got := answerCurrent(t, svc, attempts, id, true); !got {
		t.Error("correct answer graded as incorrect")
	}
	if got := answerCurrent(t, svc, attempts, id, false); got {
		t.Error("wrong answer graded as correct")
	}

	attempt := attempts.attempts[id]
	if attempt.CurrentQuestion != 2 {
		t.Errorf("cursor = %d, want 2", attempt.CurrentQuestion)
	}
	if n := attempt.AnsweredCount(); n != 2 {
		t.Errorf("answered slots = %d, want 2", n)
	}
	answers, _ := attempt.DecodeAnswers()
	if len(answers) != 10 {
		t.Errorf("answers array resized to %d", len(answers))
	}
	if !answers[0].IsCorrect || answers[1].IsCorrect {
		t.Error("grading recorded in the wrong slots")
	}
}

func TestGoBackAndOverwrite(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	answerCurrent(t, svc, attempts, id, true)
	answerCurrent(t, svc, attempts, id, false) // 槽位 1 答错

	if err := svc.GoBack(testUserID, id); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	attempt := attempts.attempts[id]
	if attempt.CurrentQuestion != 1 {
		t.Fatalf("cursor after back = %d, want 1", attempt.CurrentQuestion)
	}
	// 回退不抹掉已记录的答案
	if n := attempt.AnsweredCount(); n != 2 {
		t.Errorf("answered slots after back = %d, want 2", n)
	}

	// 重答原位覆盖，不追加
	answerCurrent(t, svc, attempts, id, true)
	attempt = attempts.attempts[id]
	if attempt.CurrentQuestion != 2 {
		t.Errorf("cursor after re-answer = %d, want 2", attempt.CurrentQuestion)
	}
	if n := attempt.AnsweredCount(); n != 2 {
		t.Errorf("answered slots after re-answer = %d, want 2", n)
	}
	answers, _ := attempt.DecodeAnswers()
	if !answers[1].IsCorrect {
		t.Error("slot 1 not overwritten with the corrected answer")
	}
}

func TestGoBackAtFirstQuestion(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	if err := svc.GoBack(testUserID, id); !errors.Is(err, util.ErrCannotGoBack) {
		t.Errorf("GoBack at cursor 0 err = %v, want ErrCannotGoBack", err)
	}
}

func TestSubmitAnswerConcurrentConflict(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	// 在读取与写入之间模拟另一请求抢先提交
	fired := false
	attempts.afterFind = func(stored *model.Attempt) {
		if !fired {
			fired = true
			stored.Version++
			stored.CurrentQuestion++
		}
	}

	if _, err := svc.SubmitAnswer(testUserID, id, "mauvaise-a"); !errors.Is(err, util.ErrAttemptConflict) {
		t.Errorf("stale submit err = %v, want ErrAttemptConflict", err)
	}
	if got := attempts.attempts[id].CurrentQuestion; got != 1 {
		t.Errorf("cursor = %d, want 1 (only the winning submit advanced)", got)
	}
}

func TestCompleteComputesScoreAndIsIdempotent(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	// 7 对 3 错 → 70 分
	for i := 0; i < 10; i++ {
		answerCurrent(t, svc, attempts, id, i < 7)
	}
	attempts.attempts[id].StartedAt = time.Now().Add(-95 * time.Second)

	result, err := svc.Complete(testUserID, id)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Score != 70 {
		t.Errorf("score = %v, want 70", result.Score)
	}
	if result.CorrectAnswers != 7 || result.TotalQuestions != 10 {
		t.Errorf("correct/total = %d/%d, want 7/10", result.CorrectAnswers, result.TotalQuestions)
	}
	if result.DurationSeconds < 95 || result.DurationSeconds > 96 {
		t.Errorf("duration = %ds, want ~95s", result.DurationSeconds)
	}
	if result.Duration != util.FormatDuration(result.DurationSeconds) {
		t.Errorf("duration text = %q", result.Duration)
	}
	if len(result.DetailedResults) != 10 {
		t.Fatalf("len(details) = %d, want 10", len(result.DetailedResults))
	}
	for i, d := range result.DetailedResults {
		if d.UserAnswer == nil {
			t.Errorf("details[%d] has no user answer", i)
		}
		if d.IsCorrect != (i < 7) {
			t.Errorf("details[%d].isCorrect = %v", i, d.IsCorrect)
		}
	}

	// 第二次访问是幂等读：分数与完成时间不变
	again, err := svc.Complete(testUserID, id)
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if again.Score != result.Score || again.DurationSeconds != result.DurationSeconds {
		t.Errorf("second Complete recomputed: score %v→%v, duration %d→%d",
			result.Score, again.Score, result.DurationSeconds, again.DurationSeconds)
	}
	if !again.CompletedAt.Equal(*result.CompletedAt) {
		t.Errorf("CompletedAt changed on revisit: %v → %v", result.CompletedAt, again.CompletedAt)
	}
}

func TestCompletePartialAttempt(t *testing.T) {
	attempts := newFakeAttemptStore()
	svc := newQuizService(seedQuestions(12), attempts)
	id, _ := svc.StartQuiz(testUserID, "Vision", "Facile")

	// 只答 4 题就结算，未答题计为错误
	for i := 0; i < 4; i++ {
		answerCurrent(t, svc, attempts, id, true)
	}

	result, err := svc.Complete(testUserID, id)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Score != 40 {
		t.Errorf("score = %v, want 40", result.Score)
	}
	for i := 4; i < 10; i++ {
		d := result.DetailedResults[i]
		if d.UserAnswer != nil {
			t.Errorf("details[%d].userAnswer = %q, want null", i, *d.UserAnswer)
		}
		if d.IsCorrect {
			t.Errorf("details[%d] unanswered but marked correct", i)
		}
	}

	// 结算后禁止继续作答与回退
	if _, err := svc.SubmitAnswer(testUserID, id, "x"); !errors.Is(err, util.ErrAttemptCompleted) {
		t.Errorf("submit after complete err = %v, want ErrAttemptCompleted", err)
	}
	if err := svc.GoBack(testUserID, id); !errors.Is(err, util.ErrAttemptCompleted) {
		t.Errorf("back after complete err = %v, want ErrAttemptCompleted", err)
	}
}
