package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/util"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// 开发者旁路登录使用的固定身份
const (
	devEmail  = "dev@test.com"
	devName   = "Testeur Mobile"
	devAvatar = "https://ui-avatars.com/api/?name=Test+Mobile&background=random"
)

// GoogleProfile 身份提供方返回的用户信息
type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type AuthService struct {
	Users UserStore
	Cfg   *config.Config
	oauth *oauth2.Config
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		Users: users,
		Cfg:   cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// ExchangeProfile 用授权码换取令牌并拉取用户信息
func (s *AuthService) ExchangeProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	resp, err := s.oauth.Client(ctx, token).Get(userInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("userinfo without email")
	}
	return &profile, nil
}

// UpsertUser 按邮箱建立或更新用户：首次登录创建，再次登录刷新 last_login
func (s *AuthService) UpsertUser(email, name, avatar string, isDev bool) (*model.User, error) {
	user, err := s.Users.FindByEmail(email)
	if err == nil {
		if err := s.Users.UpdateLastLogin(user.ID); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &model.User{
		Email:  email,
		Name:   name,
		Avatar: avatar,
		IsDev:  isDev,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DevLogin 本地/测试用的旁路登录，不经过任何外部校验
func (s *AuthService) DevLogin() (*model.User, error) {
	return s.UpsertUser(devEmail, devName, devAvatar, true)
}

func (s *AuthService) SessionToken(user *model.User) (string, error) {
	return util.GenerateSessionToken(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}
