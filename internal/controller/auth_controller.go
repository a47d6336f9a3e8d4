package controller

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/service"
	"quiz_icc_backend/internal/util"
	"quiz_icc_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService *service.AuthService
	Cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService: authService,
		Cfg:         cfg,
	}
}

func (c *AuthController) isRelease() bool {
	return c.Cfg.Server.Mode == "release"
}

func (c *AuthController) setSession(ctx *gin.Context, user *model.User) error {
	token, err := c.AuthService.SessionToken(user)
	if err != nil {
		return err
	}
	maxAge := int(c.Cfg.JWT.ExpireTime.Seconds())
	ctx.SetCookie(util.SessionCookie, token, maxAge, "/", "", c.isRelease(), true)
	return nil
}

// Index godoc
// @Summary 首页
// @Description 未登录显示登录入口，已登录重定向到仪表盘
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Router / [get]
func (c *AuthController) Index(ctx *gin.Context) {
	if util.GetUserFromContext(ctx) != nil {
		ctx.Redirect(http.StatusFound, "/dashboard")
		return
	}
	util.Success(ctx, gin.H{
		"title": "Quiz ICC",
		"login": "/login",
	})
}

// Login godoc
// @Summary 发起 Google OAuth 登录
// @Description 生成 state 并重定向到授权服务器
// @Tags 认证
// @Success 302
// @Router /login [get]
func (c *AuthController) Login(ctx *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	state := hex.EncodeToString(buf)

	ctx.SetCookie(util.OAuthStateCookie, state, 600, "/", "", c.isRelease(), true)
	ctx.Redirect(http.StatusFound, c.AuthService.LoginURL(state))
}

// Authorize godoc
// @Summary OAuth 回调
// @Description 校验 state，用授权码换取用户信息并建立会话。
// 任何失败只记录日志并退回首页，不向外暴露细节。
// @Tags 认证
// @Success 302
// @Router /authorize [get]
func (c *AuthController) Authorize(ctx *gin.Context) {
	state := ctx.Query("state")
	cookieState, err := ctx.Cookie(util.OAuthStateCookie)
	ctx.SetCookie(util.OAuthStateCookie, "", -1, "/", "", c.isRelease(), true)

	if err != nil || state == "" || state != cookieState {
		logger.Log.Warn("oauth state mismatch")
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	code := ctx.Query("code")
	if code == "" {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	profile, err := c.AuthService.ExchangeProfile(ctx.Request.Context(), code)
	if err != nil {
		logger.Log.Error("oauth exchange failed", zap.Error(err))
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	user, err := c.AuthService.UpsertUser(profile.Email, profile.Name, profile.Picture, false)
	if err != nil {
		logger.Log.Error("user upsert failed", zap.Error(err))
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	if err := c.setSession(ctx, user); err != nil {
		logger.Log.Error("session token failed", zap.Error(err))
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	ctx.Redirect(http.StatusFound, "/dashboard")
}

// DevLogin godoc
// @Summary 开发者旁路登录
// @Description 跳过 OAuth，使用固定测试身份登录。release 模式下不可用
// @Tags 认证
// @Success 302
// @Router /login/dev [get]
func (c *AuthController) DevLogin(ctx *gin.Context) {
	if c.isRelease() {
		util.NotFound(ctx)
		return
	}

	user, err := c.AuthService.DevLogin()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.setSession(ctx, user); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/dashboard")
}

// Logout godoc
// @Summary 退出登录
// @Description 清除会话 Cookie 并回到首页
// @Tags 认证
// @Success 302
// @Router /logout [get]
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(util.SessionCookie, "", -1, "/", "", c.isRelease(), true)
	ctx.Redirect(http.StatusFound, "/")
}
