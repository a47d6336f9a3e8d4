package controller

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"quiz_icc_backend/internal/service"
	"quiz_icc_backend/internal/util"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	StatsService   *service.StatsService
	StorageService *service.StorageService
	Users          service.UserStore
}

func NewUserController(statsService *service.StatsService, storageService *service.StorageService, users service.UserStore) *UserController {
	return &UserController{
		StatsService:   statsService,
		StorageService: storageService,
		Users:          users,
	}
}

// Dashboard godoc
// @Summary 仪表盘
// @Description 用户的总次数、平均分、最高分与分类统计
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /dashboard [get]
func (c *UserController) Dashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	stats, err := c.StatsService.Dashboard(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// History godoc
// @Summary 测验历史
// @Description 按完成时间倒序的已完成记录列表
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Success 200 {object} util.Response{data=[]service.HistoryItem}
// @Router /history [get]
func (c *UserController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	items, err := c.StatsService.History(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// HistoryDetail godoc
// @Summary 历史详情
// @Description 某次已完成测验的逐题明细；找不到时转回历史列表
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Router /history/{id} [get]
func (c *UserController) HistoryDetail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	result, err := c.StatsService.HistoryDetail(user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			ctx.Redirect(http.StatusFound, "/history")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Profile godoc
// @Summary 个人资料
// @Description 用户信息与全量统计：总用时、满分次数、分类统计
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Success 200 {object} util.Response{data=service.ProfileStats}
// @Router /profile [get]
func (c *UserController) Profile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	stats, err := c.StatsService.Profile(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			ctx.Redirect(http.StatusFound, "/")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Leaderboard godoc
// @Summary 排行榜
// @Description 所有用户按 (平均分, 次数) 降序排列
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	entries, err := c.StatsService.Leaderboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 替换当前用户头像，存储在本地或 MinIO
// @Tags 用户
// @Accept mpfd
// @Produce json
// @Security SessionCookie
// @Param avatar formData file true "头像图片"
// @Success 200 {object} util.Response{data=object} "avatar url"
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, e := range util.AllowedAvatarExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "type de fichier non supporté")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, util.MimeImage) {
		util.BadRequest(ctx, "type de fichier non supporté")
		return
	}

	filename := fmt.Sprintf("avatars/%d_%d%s", user.UserID, time.Now().Unix(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.Users.UpdateAvatar(user.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"avatar": url})
}
