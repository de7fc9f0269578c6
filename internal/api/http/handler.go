package http

import (
	"errors"
	"net/http"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/errs"
	"gitee.com/flycash/event-registration-platform/internal/repository"
	couponsvc "gitee.com/flycash/event-registration-platform/internal/service/coupon"
	registrationsvc "gitee.com/flycash/event-registration-platform/internal/service/registration"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egin"
)

// Handler 对外的薄 HTTP 层，只做参数转换，逻辑都在 service 里
type Handler struct {
	regSvc    registrationsvc.Service
	couponSvc couponsvc.Service
	eventRepo repository.EventRepository
	logger    *elog.Component
}

func NewHandler(
	regSvc registrationsvc.Service,
	couponSvc couponsvc.Service,
	eventRepo repository.EventRepository,
) *Handler {
	return &Handler{
		regSvc:    regSvc,
		couponSvc: couponSvc,
		eventRepo: eventRepo,
		logger:    elog.DefaultLogger,
	}
}

func (h *Handler) RegisterRoutes(server *egin.Component) {
	server.POST("/api/registrations", h.CreateRegistration)
	server.GET("/api/events/:slug/coupons/:code", h.ValidateCoupon)
	server.POST("/api/webhooks/payment", h.PaymentCallback)
}

type createRegistrationReq struct {
	EventID    int64  `json:"eventId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	CouponCode string `json:"couponCode"`
}

func (h *Handler) CreateRegistration(c *gin.Context) {
	var req createRegistrationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	reg, err := h.regSvc.Create(c.Request.Context(), domain.Registration{
		EventID:    req.EventID,
		Name:       req.Name,
		Email:      req.Email,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     reg.ID,
		"status": reg.Status,
	})
}

func (h *Handler) ValidateCoupon(c *gin.Context) {
	event, err := h.eventRepo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	res, err := h.couponSvc.Validate(c.Request.Context(), c.Param("code"), event)
	if err != nil {
		h.renderError(c, err)
		return
	}
	payable := event.BasePrice - res.Discount
	c.JSON(http.StatusOK, gin.H{
		"valid":    res.IsValid(),
		"message":  outcomeMessage(res.Outcome),
		"discount": res.Discount,
		"payable":  payable,
	})
}

type paymentCallbackReq struct {
	RegistrationID int64 `json:"registrationId" binding:"required"`
}

// PaymentCallback 支付网关回调，签名校验在网关侧的接入层完成
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req paymentCallbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	reg, err := h.regSvc.Confirm(c.Request.Context(), req.RegistrationID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     reg.ID,
		"status": reg.Status,
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrEventNotFound),
		errors.Is(err, errs.ErrRegistrationNotFound),
		errors.Is(err, errs.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("请求处理失败", elog.FieldErr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "系统错误"})
	}
}

// outcomeMessage 校验结果对应的用户可见文案
func outcomeMessage(outcome domain.ValidationOutcome) string {
	switch outcome {
	case domain.OutcomeValid:
		return "优惠券可用"
	case domain.OutcomeNotFound:
		return "优惠券不存在"
	case domain.OutcomeInactive:
		return "优惠券已停用"
	case domain.OutcomeWrongYear:
		return "优惠券不适用于本届活动"
	case domain.OutcomeLimitReached:
		return "优惠券已被领完"
	default:
		return "优惠券不可用"
	}
}
