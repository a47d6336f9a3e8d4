package controller

import (
	"errors"
	"net/http"
	"quiz_icc_backend/internal/service"
	"quiz_icc_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService     *service.QuizService
	QuestionService *service.QuestionService
}

func NewQuizController(quizService *service.QuizService, questionService *service.QuestionService) *QuizController {
	return &QuizController{
		QuizService:     quizService,
		QuestionService: questionService,
	}
}

// Select godoc
// @Summary 分类与难度选择页
// @Description 每个分类下各难度的题目数量统计
// @Tags 测验
// @Produce json
// @Security SessionCookie
// @Success 200 {object} util.Response
// @Router /quiz/select [get]
func (c *QuizController) Select(ctx *gin.Context) {
	overview, err := c.QuestionService.SelectionOverview(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"categories":   overview,
		"difficulties": c.QuestionService.Cfg.Quiz.Difficulties,
	})
}

// StartQuizRequest 开始测验请求
// swagger:model StartQuizRequest
type StartQuizRequest struct {
	Category   string `json:"category" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// Start godoc
// @Summary 开始新测验
// @Description 校验分类与难度，随机抽题并创建 Attempt
// @Tags 测验
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param body body StartQuizRequest true "分类与难度"
// @Success 200 {object} util.Response{data=object} "attempt_id"
// @Failure 400 {object} util.Response "参数无效或题目不足"
// @Router /api/quiz/start [post]
func (c *QuizController) Start(ctx *gin.Context) {
	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := util.GetUserFromContext(ctx)
	attemptID, err := c.QuizService.StartQuiz(user.UserID, req.Category, req.Difficulty)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCategory),
			errors.Is(err, util.ErrInvalidDifficulty),
			errors.Is(err, util.ErrNotEnoughQuestions):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"attempt_id": attemptID})
}

// Question godoc
// @Summary 当前题目
// @Description 返回游标指向的题目与进度；无效或已完成的记录转回仪表盘
// @Tags 测验
// @Produce json
// @Security SessionCookie
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.QuestionView}
// @Router /quiz/attempt/{id} [get]
func (c *QuizController) Question(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	attemptID := ctx.Param("id")

	view, err := c.QuizService.CurrentQuestion(user.UserID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizFinished):
			ctx.Redirect(http.StatusFound, "/quiz/attempt/"+attemptID+"/complete")
		case errors.Is(err, util.ErrAttemptNotFound),
			errors.Is(err, util.ErrAttemptCompleted),
			errors.Is(err, util.ErrQuestionNotFound):
			ctx.Redirect(http.StatusFound, "/dashboard")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// Previous godoc
// @Summary 回到上一题
// @Description 游标大于 0 时回退一格，已有答案保持不变
// @Tags 测验
// @Produce json
// @Security SessionCookie
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "无效记录或已在第一题"
// @Router /quiz/attempt/{id}/previous [post]
func (c *QuizController) Previous(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	err := c.QuizService.GoBack(user.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrAttemptCompleted):
			util.BadRequest(ctx, util.ErrAttemptNotFound.Error())
		case errors.Is(err, util.ErrCannotGoBack):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"success": true})
}

// SubmitAnswerRequest 提交答案请求
// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// Answer godoc
// @Summary 提交答案
// @Description 判分并写入当前槽位，游标前移；重复提交返回 409
// @Tags 测验
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Attempt ID"
// @Param body body SubmitAnswerRequest true "所选答案"
// @Success 200 {object} util.Response{data=object} "is_correct"
// @Failure 400 {object} util.Response "无效记录"
// @Failure 409 {object} util.Response "并发提交冲突"
// @Router /quiz/attempt/{id}/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := util.GetUserFromContext(ctx)
	isCorrect, err := c.QuizService.SubmitAnswer(user.UserID, ctx.Param("id"), req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound),
			errors.Is(err, util.ErrAttemptCompleted),
			errors.Is(err, util.ErrQuizFinished):
			util.BadRequest(ctx, util.ErrAttemptNotFound.Error())
		case errors.Is(err, util.ErrAttemptConflict):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"success": true, "is_correct": isCorrect})
}

// Complete godoc
// @Summary 测验结算
// @Description 首次访问计算并持久化得分，之后幂等返回逐题明细
// @Tags 测验
// @Produce json
// @Security SessionCookie
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Router /quiz/attempt/{id}/complete [get]
func (c *QuizController) Complete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	result, err := c.QuizService.Complete(user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			ctx.Redirect(http.StatusFound, "/dashboard")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
