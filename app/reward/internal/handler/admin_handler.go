package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
)

// AdminCommandRequest 运维指令请求
type AdminCommandRequest struct {
	AccountID int64  `json:"account_id" binding:"required"`
	Line      string `json:"line" binding:"required"`
}

// AdminCommand 对目标账号执行运维指令
func (h *Handler) AdminCommand(c *gin.Context) {
	var req AdminCommandRequest
	if !web.BindJSON(c, &req) {
		return
	}

	operator := accountFrom(c)
	h.logger.InfoContext(c.Request.Context(), "admin command",
		"operator", operator.ServerID,
		"account_id", req.AccountID,
		"line", req.Line,
	)

	lines, err := h.dispatcher.Execute(c.Request.Context(), req.AccountID, req.Line)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"lines": lines})
}
