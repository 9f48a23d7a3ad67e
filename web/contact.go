package web

import (
	"errors"
	"net/http"
	"stagesite/auth"
	"stagesite/logger"
	"stagesite/models"
	"stagesite/utils"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContactForm struct {
	Name    string `form:"name" binding:"required,notblank,max=100"`
	Email   string `form:"email" binding:"required,email,max=150"`
	Message string `form:"message" binding:"required,notblank,max=5000"`
}

func ContactPage(c *gin.Context) {
	render(c, http.StatusOK, "contact.tmpl", gin.H{"title": "문의하기"})
}

func ContactSubmit(c *gin.Context) {
	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			rejectTooLarge(c, false)
			return
		}
		redirectWithFlash(c, auth.FlashError, validationMessage(err), "/contact")
		return
	}
	contact := models.Contact{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Message: strings.TrimSpace(form.Message),
	}
	if err := contact.Create(); err != nil {
		logger.Get().Error().Err(err).Msg("cannot save contact message")
		redirectWithFlash(c, auth.FlashError, "메시지 전송 중 오류가 발생했습니다.", "/contact")
		return
	}
	redirectWithFlash(c, auth.FlashSuccess, "문의가 접수되었습니다. 감사합니다!", "/contact")
}

func ContactToggleAnswered(c *gin.Context, admin *models.AdminSession) {
	contact, err := models.ContactToggleAnswered(utils.StringToUint64(c.Param("id")))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	message := "답변 대기로 표시했습니다."
	if contact.Answered {
		message = "답변 완료로 표시했습니다."
	}
	redirectWithFlash(c, auth.FlashSuccess, message, "/admin/dashboard")
}

func ContactDelete(c *gin.Context, admin *models.AdminSession) {
	contact, err := models.ContactByID(utils.StringToUint64(c.Param("id")))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	if err == nil {
		err = models.ContactDelete(contact.ID)
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	redirectWithFlash(c, auth.FlashSuccess, "문의가 삭제되었습니다.", "/admin/dashboard")
}
