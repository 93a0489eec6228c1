package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
)

// MailListRequest 邮件列表请求
type MailListRequest struct {
	IsReadMail bool `json:"is_read_mail"`
}

// MailListResponse 邮件列表响应
type MailListResponse struct {
	Mails []*model.MailDB `json:"mails"`
	Count int             `json:"count"`
}

// MailReceiveRequest 领取请求
type MailReceiveRequest struct {
	MailServerIDs []int64 `json:"mail_server_ids" binding:"required"`
}

// MailCheck 未领取邮件数量
func (h *Handler) MailCheck(c *gin.Context) {
	n, err := h.mail.Check(c.Request.Context(), accountFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"count": n})
}

// MailList 已领取或未领取的邮件
func (h *Handler) MailList(c *gin.Context) {
	var req MailListRequest
	if !web.BindJSON(c, &req) {
		return
	}

	mails, err := h.mail.List(c.Request.Context(), accountFrom(c), req.IsReadMail)
	if err != nil {
		h.fail(c, err)
		return
	}
	if mails == nil {
		mails = []*model.MailDB{}
	}
	web.Success(c, MailListResponse{Mails: mails, Count: len(mails)})
}

// MailReceive 领取邮件附件
func (h *Handler) MailReceive(c *gin.Context) {
	var req MailReceiveRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.mail.Receive(c.Request.Context(), accountFrom(c), req.MailServerIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}
