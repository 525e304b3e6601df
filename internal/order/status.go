package order

import (
	"strings"

	"parts_store/internal/apperr"
)

// 状态流：严格单向，INITIATED → PREPARING → SHIPPED → DELIVERED。
// CANCELLED 是终态侧枝，除 DELIVERED 外任意状态可进入。
const (
	StatusInitiated = "INITIATED"
	StatusPreparing = "PREPARING"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

var statusFlow = []string{StatusInitiated, StatusPreparing, StatusShipped, StatusDelivered}

// 历史数据别名：只在序号比较时折算到 PREPARING，新写入一律用规范名。
var legacyAlias = map[string]string{
	"CONFIRMED":      StatusPreparing,
	"IN_PREPARATION": StatusPreparing,
}

// StatusFlow 返回规范正向状态序列（供前端提示下一步可选状态）。
func StatusFlow() []string {
	out := make([]string, len(statusFlow))
	copy(out, statusFlow)
	return out
}

// Canonical 返回规范状态名：大写并折算历史别名。未知状态原样大写返回。
func Canonical(status string) string {
	u := strings.ToUpper(status)
	if c, ok := legacyAlias[u]; ok {
		return c
	}
	return u
}

// statusIndex 计算状态在正向序列中的序号。
// CANCELLED 视为越过序列末尾（用于"已终态"判断）；未知状态返回 -1。
func statusIndex(status string) int {
	u := strings.ToUpper(status)
	if u == StatusCancelled {
		return len(statusFlow)
	}
	if canon, ok := legacyAlias[u]; ok {
		u = canon
	}
	for i, s := range statusFlow {
		if s == u {
			return i
		}
	}
	return -1
}

// ValidateTransition 校验 current → next 是否合法，非法时返回 InvalidArgument。
// 规则：
//   - next 必须是已知状态
//   - 已 DELIVERED 的订单不可再取消
//   - 非取消转移必须严格前进（禁止平移 / 回退 / 重入同一状态）
func ValidateTransition(current, next string) error {
	nextIdx := statusIndex(next)
	if nextIdx < 0 {
		return apperr.InvalidArgumentf("状态无效: %s，可用: %s 或 %s",
			next, strings.Join(statusFlow, ", "), StatusCancelled)
	}

	currentIdx := statusIndex(current)
	nextUpper := strings.ToUpper(next)
	if nextUpper == StatusCancelled {
		if currentIdx >= len(statusFlow)-1 {
			return apperr.InvalidArgumentf("订单已送达或已取消，不能取消。当前状态: %s", current)
		}
		return nil
	}
	if nextIdx <= currentIdx {
		return apperr.InvalidArgumentf("不能回退或重入状态。当前状态: %s，目标状态: %s", current, nextUpper)
	}
	return nil
}
