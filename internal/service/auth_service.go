package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"neontask/internal/core/cache"
	"neontask/internal/domain"
	"neontask/pkg/utils"
)

const (
	MsgRegisterFailed = "SYSTEM ERROR: REGISTRATION FAILED"
	MsgLoginFailed    = "SYSTEM ERROR: AUTHENTICATION FAILED"
)

// Tokens 由 core/auth.JWTer 实现，测试里可替换
type Tokens interface {
	Issue(uid string) (string, error)
	Verify(token string) (string, error)
}

type AuthResult struct {
	User  domain.UserView
	Token string
}

type RegisterInput struct {
	Email    string
	Password string
	Handle   string
}

type AuthService struct {
	users       domain.UserRepository
	tokens      Tokens
	cache       *cache.Cache
	identityTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService c 可以为 nil（不缓存身份）
func NewAuthService(users domain.UserRepository, tokens Tokens, c *cache.Cache, identityTTL time.Duration) *AuthService {
	if identityTTL <= 0 {
		identityTTL = 5 * time.Minute
	}
	return &AuthService{users: users, tokens: tokens, cache: c, identityTTL: identityTTL}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	handle := strings.TrimSpace(in.Handle)
	switch {
	case email == "":
		return nil, domain.Validation("VALIDATION FAILED: EMAIL REQUIRED")
	case handle == "":
		return nil, domain.Validation("VALIDATION FAILED: HANDLE REQUIRED")
	case in.Password == "":
		return nil, domain.Validation("VALIDATION FAILED: PASSWORD REQUIRED")
	}

	existing, err := s.users.FindByEmailOrHandle(ctx, email, handle)
	if err != nil {
		return nil, domain.Internal(MsgRegisterFailed, err)
	}
	if existing != nil {
		return nil, domain.Conflict(domain.MsgConflict)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, domain.Validation("VALIDATION FAILED: PASSWORD TOO LONG")
		}
		return nil, domain.Internal(MsgRegisterFailed, err)
	}

	u := &domain.User{ID: utils.NewID(), Email: email, Handle: handle, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册：唯一索引兜底
		if isDupKey(err) {
			return nil, domain.Conflict(domain.MsgConflict)
		}
		return nil, domain.Internal(MsgRegisterFailed, err)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal(MsgRegisterFailed, err)
	}
	return &AuthResult{User: u.View(), Token: tok}, nil
}

// Login 邮箱不存在和密码错误返回同一个错误；邮箱不存在时也做一次 bcrypt 比较
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, domain.Internal(MsgLoginFailed, err)
	}
	if u == nil {
		_ = utils.CheckPassword(password, s.dummy())
		return nil, domain.InvalidCredentials()
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.InvalidCredentials()
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal(MsgLoginFailed, err)
	}
	return &AuthResult{User: u.View(), Token: tok}, nil
}

// Authenticate token -> 身份；用户查询走身份缓存（用户从不更新/删除，缓存不会过时）
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.Unauthorized(domain.MsgNoToken)
	}
	uid, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, &domain.Error{Kind: domain.KindUnauthorized, Msg: domain.MsgInvalidToken, Err: err}
	}

	id, err := cache.GetOrLoadJSON(s.cache, ctx, "identity:"+uid, s.identityTTL,
		func(ctx context.Context) (*domain.Identity, error) {
			u, err := s.users.FindByID(ctx, uid)
			if err != nil {
				return nil, domain.Internal(MsgLoginFailed, err)
			}
			if u == nil {
				return nil, domain.Unauthorized(domain.MsgInvalidToken)
			}
			ident := u.Identity()
			return &ident, nil
		})
	if err != nil {
		return domain.Identity{}, err
	}
	if id == nil || id.ID == "" {
		return domain.Identity{}, domain.Unauthorized(domain.MsgInvalidToken)
	}
	return *id, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("neontask-timing-equalizer")
	})
	return s.dummyHash
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
