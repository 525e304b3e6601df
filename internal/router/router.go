package router

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"parts_store/internal/apperr"
	"parts_store/internal/config"
	"parts_store/internal/inventory"
	"parts_store/internal/middleware"
	"parts_store/internal/order"
	"parts_store/internal/payment"
	rediskey "parts_store/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, svc *order.Service, ledger *inventory.Ledger,
	rdb *rd.Client, cache *rediskey.StockCache, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Orders
	r.POST("/api/orders", middleware.RedisRateLimit(rdb, cfg.OrderRateLimit, cfg.OrderRateWindow), placeOrder(svc))
	r.GET("/api/orders", listOrders(svc))
	r.GET("/api/orders/status-flow", statusFlow())
	r.GET("/api/orders/user/:user_id", userOrders(svc))
	r.GET("/api/orders/:order_id", getOrder(svc))
	r.GET("/api/orders/:order_id/history", orderHistory(svc))
	r.PUT("/api/orders/:order_id/status", updateStatus(svc))

	// Inventory
	r.GET("/api/parts/:part_id/stock", getStock(ledger, cache))
	r.POST("/api/parts/:part_id/stock/preload", preloadStock(ledger, cfg.AdminToken))
	r.POST("/api/parts/:part_id/stock/add", addStock(ledger, cfg.AdminToken))
	r.PUT("/api/parts/:part_id/inventory", setInventory(ledger, cfg.AdminToken))
}

// respondErr 按错误分类映射 HTTP 状态码：
// NotFound→404，InvalidArgument→400，其余→500（先记日志）。
func respondErr(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": err.Error()})
	case apperr.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
	}
}

// placeOrder 下单入口。
// 关键流程：
// 1. 参数校验；payment 若携带则只做格式校验（不落库不外发）
// 2. 编排预留 → 定价 → 落单 → 扣减
// 3. 带支付数据的订单补发确认通知（尽力而为）
func placeOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID  int64             `json:"user_id" binding:"required,min=1"`
			Items   []order.LineInput `json:"items"`
			Payment *payment.Card     `json:"payment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		if req.Payment != nil {
			if err := req.Payment.Validate(); err != nil {
				respondErr(c, err)
				return
			}
		}

		header, err := svc.PlaceOrder(c.Request.Context(), req.UserID, req.Items)
		if err != nil {
			respondErr(c, err)
			return
		}

		// 原始行为：只有携带支付数据的订单才发确认邮件。
		if req.Payment != nil {
			svc.NotifyOrderPlaced(c.Request.Context(), header)
		}

		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": header})
	}
}

// listOrders 订单列表（后台管理），可按最新状态 / 用户 / 创建日期过滤。
func listOrders(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f order.Filter
		f.Status = c.Query("status")
		if v := c.Query("user_id"); v != "" {
			userID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user_id 无效"})
				return
			}
			f.UserID = userID
		}
		from, err := parseDate(c.Query("from"), false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "from 日期格式须为 YYYY-MM-DD"})
			return
		}
		to, err := parseDate(c.Query("to"), true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "to 日期格式须为 YYYY-MM-DD"})
			return
		}
		f.From, f.To = from, to

		rows, err := svc.ListFiltered(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": rows})
	}
}

// getOrder 按 ID 查订单，附带订单行与当前状态。
func getOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUintParam(c, "order_id")
		if !ok {
			return
		}
		header, err := svc.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		items, err := svc.GetOrderItems(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		status, err := svc.LatestStatus(c.Request.Context(), orderID)
		if err != nil && !apperr.IsNotFound(err) {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"order":  header,
			"items":  items,
			"status": status,
		}})
	}
}

// orderHistory 订单状态流水。
func orderHistory(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUintParam(c, "order_id")
		if !ok {
			return
		}
		history, err := svc.History(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": history})
	}
}

// updateStatus 推进订单状态（后台操作）。
func updateStatus(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUintParam(c, "order_id")
		if !ok {
			return
		}
		var req struct {
			Status          string `json:"status" binding:"required"`
			Comment         string `json:"comment"`
			ChangedByUserID int64  `json:"changed_by_user_id" binding:"required,min=1"`
			TrackingNumber  string `json:"tracking_number"`
			EtaDays         *int   `json:"eta_days"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		entry, err := svc.UpdateStatus(c.Request.Context(), orderID, order.StatusChange{
			Status:          req.Status,
			Comment:         req.Comment,
			ChangedByUserID: req.ChangedByUserID,
			TrackingNumber:  req.TrackingNumber,
			EtaDays:         req.EtaDays,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": entry})
	}
}

// userOrders 某用户的订单列表。
func userOrders(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "用户ID无效"})
			return
		}
		orders, err := svc.ListByUser(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": orders})
	}
}

// statusFlow 规范正向状态序列（供前端只展示可选的下一步）。
func statusFlow() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": order.StatusFlow()})
	}
}

// getStock 查询零件可售数量：优先 Redis 缓存，未命中回源 DB 并回填。
func getStock(ledger *inventory.Ledger, cache *rediskey.StockCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		partID, ok := parseUintParam(c, "part_id")
		if !ok {
			return
		}
		if cache != nil {
			if available, hit, err := cache.GetAvailable(c.Request.Context(), partID); err == nil && hit {
				c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"available": available}})
				return
			}
		}
		available, err := ledger.Availability(c.Request.Context(), partID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"available": available}})
	}
}

// preloadStock 将 DB 可售数量预热到 Redis 缓存。
// 该接口要求简单管理员 token，避免被任意调用。
func preloadStock(ledger *inventory.Ledger, adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != adminToken {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		partID, ok := parseUintParam(c, "part_id")
		if !ok {
			return
		}
		available, err := ledger.Availability(c.Request.Context(), partID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"available": available}})
	}
}

// addStock 入库补货（管理员），写 inventory_logs 流水。
func addStock(ledger *inventory.Ledger, adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != adminToken {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		partID, ok := parseUintParam(c, "part_id")
		if !ok {
			return
		}
		var req struct {
			UserID   int64 `json:"user_id" binding:"required,min=1"`
			Quantity int   `json:"quantity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		part, err := ledger.AddStock(c.Request.Context(), partID, req.UserID, req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": part})
	}
}

// setInventory 管理员直接改写库存数量 / 低库存阈值（盘点订正用）。
// 未携带的字段保持原值。
func setInventory(ledger *inventory.Ledger, adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != adminToken {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		partID, ok := parseUintParam(c, "part_id")
		if !ok {
			return
		}
		var req struct {
			StockQuantity     *int `json:"stock_quantity"`
			LowStockThreshold *int `json:"low_stock_threshold"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		part, err := ledger.SetInventory(c.Request.Context(), partID, req.StockQuantity, req.LowStockThreshold)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": part})
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": name + " 无效"})
		return 0, false
	}
	return uint(v), true
}

// parseDate 解析 YYYY-MM-DD；endOfDay 时取当天最后一刻。
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}
