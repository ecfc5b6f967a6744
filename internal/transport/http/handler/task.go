package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neontask/internal/domain"
	"neontask/internal/service"
	"neontask/internal/transport/http/ez"
)

const (
	MsgTaskCreated    = "OPERATION CREATED SUCCESSFULLY"
	MsgTaskUpdated    = "OPERATION UPDATED SUCCESSFULLY"
	MsgTaskTerminated = "OPERATION TERMINATED SUCCESSFULLY"
)

type listIn struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

type listOut struct {
	Count      int           `json:"count"`
	Operations []domain.Task `json:"operations"`
}

type createIn struct {
	Title       string  `json:"title"       binding:"required"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// updateIn 指针字段：nil = 请求里没有这个字段
type updateIn struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type taskOut struct {
	Message   string       `json:"message"`
	Operation *domain.Task `json:"operation"`
}

type deleteOut struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Tasks /tasks 全部要求登录，只操作当前身份名下的任务
type Tasks struct {
	svc *service.TaskService
}

func NewTasks(svc *service.TaskService) *Tasks { return &Tasks{svc: svc} }

func (h *Tasks) MountPrivate(g *gin.RouterGroup) {
	tg := g.Group("/tasks")

	ez.Register(tg, ez.Action[listIn, listOut]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindQuery,
		Auth:    true,
		FailMsg: service.MsgListFailed,
		Handler: func(c *gin.Context, id domain.Identity, in *listIn) (listOut, error) {
			tasks, err := h.svc.List(c.Request.Context(), id.ID, service.ListFilter{Status: in.Status, Priority: in.Priority})
			if err != nil {
				return listOut{}, err
			}
			return listOut{Count: len(tasks), Operations: tasks}, nil
		},
	})

	ez.Register(tg, ez.Action[createIn, taskOut]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindJSON,
		Auth:    true,
		Status:  http.StatusCreated,
		FailMsg: service.MsgCreateFailed,
		Handler: func(c *gin.Context, id domain.Identity, in *createIn) (taskOut, error) {
			t, err := h.svc.Create(c.Request.Context(), id.ID, service.CreateTaskInput{
				Title: in.Title, Description: in.Description, Priority: in.Priority, DueDate: in.DueDate,
			})
			if err != nil {
				return taskOut{}, err
			}
			return taskOut{Message: MsgTaskCreated, Operation: t}, nil
		},
	})

	ez.Register(tg, ez.Action[updateIn, taskOut]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindJSON,
		Auth:    true,
		FailMsg: service.MsgUpdateFailed,
		Handler: func(c *gin.Context, id domain.Identity, in *updateIn) (taskOut, error) {
			t, err := h.svc.Update(c.Request.Context(), id.ID, c.Param("id"), service.TaskPatch{
				Title:       in.Title,
				Description: in.Description,
				Status:      in.Status,
				Priority:    in.Priority,
				DueDate:     in.DueDate,
			})
			if err != nil {
				return taskOut{}, err
			}
			return taskOut{Message: MsgTaskUpdated, Operation: t}, nil
		},
	})

	ez.Register(tg, ez.Action[struct{}, deleteOut]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		FailMsg: service.MsgDeleteFailed,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (deleteOut, error) {
			taskID, err := h.svc.Delete(c.Request.Context(), id.ID, c.Param("id"))
			if err != nil {
				return deleteOut{}, err
			}
			return deleteOut{Message: MsgTaskTerminated, ID: taskID}, nil
		},
	})
}
