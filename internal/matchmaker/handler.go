package matchmaker

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc     *Service
	started time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, started: time.Now()}
}

// ClearRequest POST /api/clear 的请求体；全部留空表示清空所有队列
type ClearRequest struct {
	Mode  string `json:"mode"`
	Stake string `json:"stake"`
}

type queueView struct {
	Queue    string          `json:"queue"`
	Mode     Mode            `json:"mode"`
	Stake    string          `json:"stake"`
	Size     int             `json:"size"`
	Members  []ParticipantID `json:"members"`
	Cost     string          `json:"playerCost"`
	Payout   string          `json:"payout"`
	Pending  bool            `json:"pendingModerator"`
	Capacity int             `json:"capacity"`
}

// GET /api/status
func (h *Handler) Status(c *gin.Context) {
	st := h.svc.Status()
	waiting := 0
	for _, q := range st.Queues {
		waiting += len(q.Members)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "online",
		"uptime":     int64(time.Since(h.started).Seconds()),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"queues":     len(st.Queues),
		"waiting":    waiting,
		"moderators": len(st.Moderators),
		"fee":        h.svc.Fee().StringFixed(2),
	})
}

// GET /api/queues
func (h *Handler) Queues(c *gin.Context) {
	st := h.svc.Status()
	out := make([]queueView, 0, len(st.Queues))
	for _, q := range st.Queues {
		terms := h.svc.Terms(q.Key.Stake)
		out = append(out, queueView{
			Queue:    q.Queue,
			Mode:     q.Mode,
			Stake:    q.Stake,
			Size:     len(q.Members),
			Members:  q.Members,
			Cost:     terms.PlayerCost.StringFixed(2),
			Payout:   terms.Payout.StringFixed(2),
			Pending:  len(q.Members) == 2,
			Capacity: 2,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/moderators
func (h *Handler) Moderators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"moderators": h.svc.Moderators()})
}

// POST /api/clear  (需 admin JWT)
func (h *Handler) Clear(c *gin.Context) {
	var req ClearRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	scope, err := h.svc.Clear(c.Request.Context(), ClearScope{Mode: req.Mode, Stake: req.Stake})
	if errors.Is(err, ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode or stake"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scope": scope})
}

// Register 挂载路由；admin 为管理接口的中间件链
func (h *Handler) Register(r gin.IRouter, admin ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/status", h.Status)
	api.GET("/queues", h.Queues)
	api.GET("/moderators", h.Moderators)
	api.POST("/clear", append(admin, h.Clear)...)
}
