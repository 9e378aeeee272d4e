package i18n

// messages 各语言消息表
var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":         "请求参数有误",
		"error.unauthorized":        "未登录或登录已过期",
		"error.forbidden":           "没有操作权限",
		"error.internal":            "服务器内部错误",
		"error.rate_limited":           "操作过于频繁，请稍后再试",
		"error.rate_limit_unavailable": "限流服务暂不可用",
		"error.login_too_many":         "登录尝试过于频繁，请 %d 秒后再试",
		"error.token_revoked":          "登录凭证已失效，请重新登录",
		"error.auth_header_missing": "缺少认证信息",
		"error.auth_header_invalid": "认证信息格式有误",
		"error.token_invalid":       "登录凭证无效",
		"error.jwt_secret_missing":  "服务端认证配置缺失",

		"error.invalid_credentials":        "用户名或密码错误",
		"error.operator_disabled":          "操作员账号已停用",
		"error.operator_not_found":         "操作员不存在",
		"error.operator_id_invalid":        "操作员 ID 无效",
		"error.operator_id_type_invalid":   "操作员 ID 类型有误",

		"error.customer_not_found":    "客户不存在",
		"error.customer_invalid":      "客户信息不完整",
		"error.customer_code_exists":  "客户编码已存在",
		"error.order_not_found":       "订单不存在",
		"error.order_invalid":         "订单信息不完整",
		"error.order_no_exists":       "订单号已存在",
		"error.order_not_open":        "订单已关闭，不能继续操作",
		"error.line_item_not_found":   "订单行不存在",

		"error.unit_not_found":                "库存单元不存在",
		"error.unit_invalid":                  "库存单元信息无效",
		"error.barcode_exists":                "条码已存在",
		"error.barcode_not_found":             "条码不存在",
		"error.unit_referenced":               "库存单元已被引用，无法删除",
		"error.insufficient_remaining_length": "剩余长度不足",

		"error.scan_no_match":          "该条码与此订单任何未满的订单行不匹配",
		"error.line_item_full":         "该订单行已扫满",
		"error.unit_sold_conflict":     "该单元已被其他订单占用",
		"error.order_already_shipped":  "订单已发货",
		"error.shipment_not_found":     "出库单不存在",
		"error.shipment_incomplete":    "扫描未完成，不能确认发货",
		"error.scan_record_not_found":  "扫描记录不存在",
		"error.scan_record_locked":     "出库单已完成，扫描记录不可更改",
		"error.scan_quantity_invalid":  "扫描数量无效",

		"msg.success": "操作成功",
	},
	LocaleEnUS: {
		"error.bad_request":         "invalid request parameters",
		"error.unauthorized":        "not signed in or session expired",
		"error.forbidden":           "permission denied",
		"error.internal":            "internal server error",
		"error.rate_limited":           "too many attempts, try again later",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.login_too_many":         "too many login attempts, retry in %d seconds",
		"error.token_revoked":          "token revoked, sign in again",
		"error.auth_header_missing": "missing authorization header",
		"error.auth_header_invalid": "malformed authorization header",
		"error.token_invalid":       "invalid token",
		"error.jwt_secret_missing":  "server auth not configured",

		"error.invalid_credentials":      "incorrect username or password",
		"error.operator_disabled":        "operator account disabled",
		"error.operator_not_found":       "operator not found",
		"error.operator_id_invalid":      "invalid operator id",
		"error.operator_id_type_invalid": "operator id type mismatch",

		"error.customer_not_found":   "customer not found",
		"error.customer_invalid":     "customer data incomplete",
		"error.customer_code_exists": "customer code already exists",
		"error.order_not_found":      "order not found",
		"error.order_invalid":        "order data incomplete",
		"error.order_no_exists":      "order number already exists",
		"error.order_not_open":       "order is closed",
		"error.line_item_not_found":  "order line item not found",

		"error.unit_not_found":                "inventory unit not found",
		"error.unit_invalid":                  "invalid inventory unit data",
		"error.barcode_exists":                "barcode already exists",
		"error.barcode_not_found":             "barcode not found",
		"error.unit_referenced":               "inventory unit still referenced",
		"error.insufficient_remaining_length": "insufficient remaining length",

		"error.scan_no_match":          "barcode does not match any open line item of this order",
		"error.line_item_full":         "line item already fully scanned",
		"error.unit_sold_conflict":     "unit already sold for another order",
		"error.order_already_shipped":  "order already shipped",
		"error.shipment_not_found":     "shipment not found",
		"error.shipment_incomplete":    "scanning incomplete, cannot finalize",
		"error.scan_record_not_found":  "scan record not found",
		"error.scan_record_locked":     "shipment completed, scan records are immutable",
		"error.scan_quantity_invalid":  "invalid scan quantity",

		"msg.success": "ok",
	},
}
