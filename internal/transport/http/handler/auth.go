package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neontask/internal/domain"
	"neontask/internal/service"
	"neontask/internal/transport/http/ez"
)

const (
	MsgRegistered    = "REGISTRATION SUCCESSFUL"
	MsgAuthenticated = "AUTHENTICATION SUCCESSFUL"
)

type registerIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Handle   string `json:"handle"   binding:"required,max=64"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authOut struct {
	Message string          `json:"message"`
	User    domain.UserView `json:"user"`
	Token   string          `json:"token"`
}

// Auth /auth/register、/auth/login（公开）
type Auth struct {
	svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth { return &Auth{svc: svc} }

func (h *Auth) Priority() int { return 10 }

func (h *Auth) MountPublic(g *gin.RouterGroup) {
	ag := g.Group("/auth")

	ez.Register(ag, ez.Action[registerIn, authOut]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		FailMsg: service.MsgRegisterFailed,
		Handler: func(c *gin.Context, _ domain.Identity, in *registerIn) (authOut, error) {
			res, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
				Email: in.Email, Password: in.Password, Handle: in.Handle,
			})
			if err != nil {
				return authOut{}, err
			}
			return authOut{Message: MsgRegistered, User: res.User, Token: res.Token}, nil
		},
	})

	ez.Register(ag, ez.Action[loginIn, authOut]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		FailMsg: service.MsgLoginFailed,
		Handler: func(c *gin.Context, _ domain.Identity, in *loginIn) (authOut, error) {
			res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Message: MsgAuthenticated, User: res.User, Token: res.Token}, nil
		},
	})
}
