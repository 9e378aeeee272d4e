package queue

import (
	"encoding/json"

	"github.com/rollstock-erp/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShipmentStatusNotify 发货状态通知任务
	TaskShipmentStatusNotify = constants.TaskShipmentStatusNotify
)

// ShipmentStatusNotifyPayload 发货状态通知任务载荷
type ShipmentStatusNotifyPayload struct {
	OrderID    uint   `json:"order_id"`
	ShipmentID uint   `json:"shipment_id"`
	Status     string `json:"status"`
}

// NewShipmentStatusNotifyTask 构建发货状态通知任务
func NewShipmentStatusNotifyTask(payload ShipmentStatusNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentStatusNotify, data), nil
}
