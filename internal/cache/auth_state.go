package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rollstock-erp/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// OperatorAuthState 操作员鉴权快照
// 缓存令牌版本与账号状态，避免每个请求都回查数据库
type OperatorAuthState struct {
	OperatorID   uint   `json:"operator_id"`
	Username     string `json:"username"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

func operatorAuthStateKey(operatorID uint) string {
	return fmt.Sprintf("auth:operator:%d", operatorID)
}

// BuildOperatorAuthState 从操作员模型构建鉴权快照
func BuildOperatorAuthState(op *models.Operator) *OperatorAuthState {
	if op == nil {
		return nil
	}
	return &OperatorAuthState{
		OperatorID:   op.ID,
		Username:     op.Username,
		Status:       op.Status,
		TokenVersion: op.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetOperatorAuthState 读取操作员鉴权快照
func GetOperatorAuthState(ctx context.Context, operatorID uint) (*OperatorAuthState, bool, error) {
	if operatorID == 0 {
		return nil, false, nil
	}
	var state OperatorAuthState
	found, err := GetJSON(ctx, operatorAuthStateKey(operatorID), &state)
	if err != nil || !found {
		return nil, false, err
	}
	return &state, true, nil
}

// SetOperatorAuthState 写入操作员鉴权快照
func SetOperatorAuthState(ctx context.Context, state *OperatorAuthState) error {
	if state == nil || state.OperatorID == 0 {
		return nil
	}
	return SetJSON(ctx, operatorAuthStateKey(state.OperatorID), state, authStateCacheTTL)
}

// DelOperatorAuthState 删除操作员鉴权快照
func DelOperatorAuthState(ctx context.Context, operatorID uint) error {
	if operatorID == 0 {
		return nil
	}
	return Del(ctx, operatorAuthStateKey(operatorID))
}
