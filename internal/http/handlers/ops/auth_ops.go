package ops

import (
	"errors"

	"github.com/rollstock-erp/internal/http/response"
	"github.com/rollstock-erp/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 操作员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 操作员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	op, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrOperatorDisabled):
			respondError(c, response.CodeUnauthorized, "error.operator_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	requestLog(c).Infow("operator_login", "operator_id", op.ID, "username", op.Username)
	response.Success(c, gin.H{
		"operator": gin.H{
			"id":           op.ID,
			"username":     op.Username,
			"display_name": op.DisplayName,
		},
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetCurrentOperator 查询当前操作员信息
func (h *Handler) GetCurrentOperator(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	op, err := h.OperatorRepo.GetByID(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if op == nil {
		respondError(c, response.CodeNotFound, "error.operator_not_found", nil)
		return
	}

	response.Success(c, gin.H{
		"id":            op.ID,
		"username":      op.Username,
		"display_name":  op.DisplayName,
		"status":        op.Status,
		"last_login_at": op.LastLoginAt,
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改当前操作员密码，修改后已签发的令牌全部失效
func (h *Handler) ChangePassword(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ChangePassword(operatorID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrOperatorNotFound):
			respondError(c, response.CodeNotFound, "error.operator_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, nil)
}
