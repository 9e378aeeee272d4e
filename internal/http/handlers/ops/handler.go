package ops

import (
	"time"

	handlershared "github.com/rollstock-erp/internal/http/handlers/shared"
	"github.com/rollstock-erp/internal/provider"
)

// Handler 作业端接口处理器入口
// 说明：扫描工位、仓库与订单管理共用同一处理器。
type Handler struct {
	*provider.Container
}

// New 创建作业端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
