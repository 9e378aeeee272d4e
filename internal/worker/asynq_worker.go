package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/provider"
	"github.com/rollstock-erp/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShipmentStatusNotify, c.handleShipmentStatusNotify)
}

// shipmentNotifyBody 推送给外部系统的通知报文
type shipmentNotifyBody struct {
	OrderID      uint   `json:"order_id"`
	OrderNo      string `json:"order_no"`
	ShipmentID   uint   `json:"shipment_id"`
	Status       string `json:"status"`
	CustomerCode string `json:"customer_code"`
	NotifiedAt   int64  `json:"notified_at"`
}

func (c *Consumer) handleShipmentStatusNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.ShipmentID == 0 {
		logger.Debugw("worker_shipment_notify_skip_invalid_payload",
			"order_id", payload.OrderID, "shipment_id", payload.ShipmentID)
		return nil
	}

	cfg := c.Config.Notify
	if !cfg.Enabled || strings.TrimSpace(cfg.WebhookURL) == "" {
		logger.Debugw("worker_shipment_notify_skip_disabled", "order_id", payload.OrderID)
		return nil
	}

	order, err := c.OrderRepo.GetByIDWithDetail(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_shipment_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_shipment_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}

	body := shipmentNotifyBody{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		ShipmentID: payload.ShipmentID,
		Status:     payload.Status,
		NotifiedAt: time.Now().Unix(),
	}
	if order.Customer != nil {
		body.CustomerCode = order.Customer.Code
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Warnw("worker_shipment_notify_request_failed",
			"order_id", payload.OrderID, "error", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warnw("worker_shipment_notify_unexpected_status",
			"order_id", payload.OrderID, "status", resp.StatusCode)
		return fmt.Errorf("shipment notify webhook returned %d", resp.StatusCode)
	}

	logger.Infow("worker_shipment_notify_sent",
		"order_id", payload.OrderID,
		"shipment_id", payload.ShipmentID,
		"order_no", order.OrderNo,
	)
	return nil
}
