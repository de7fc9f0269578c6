package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegService struct {
	created   domain.Registration
	createErr error
	confirmed domain.Registration
}

func (f *fakeRegService) Create(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	if f.createErr != nil {
		return domain.Registration{}, f.createErr
	}
	f.created = reg
	f.created.ID = 1001
	f.created.Status = domain.RegistrationStatusPending
	return f.created, nil
}

func (f *fakeRegService) Confirm(_ context.Context, id int64) (domain.Registration, error) {
	if f.confirmed.ID != id {
		return domain.Registration{}, fmt.Errorf("%w", errs.ErrRegistrationNotFound)
	}
	f.confirmed.Status = domain.RegistrationStatusConfirmed
	return f.confirmed, nil
}

func (f *fakeRegService) Cancel(_ context.Context, _ int64) error {
	return nil
}

type fakeCouponService struct {
	result domain.ValidationResult
}

func (f *fakeCouponService) Validate(_ context.Context, _ string, _ domain.Event) (domain.ValidationResult, error) {
	return f.result, nil
}

func (f *fakeCouponService) RecordRedemption(_ context.Context, _, _ int64) (domain.CouponRedemption, error) {
	return domain.CouponRedemption{}, nil
}

type fakeEventRepo struct {
	events map[string]domain.Event
}

func (f *fakeEventRepo) GetByID(_ context.Context, _ int64) (domain.Event, error) {
	return domain.Event{}, fmt.Errorf("%w", errs.ErrEventNotFound)
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (domain.Event, error) {
	event, ok := f.events[slug]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w", errs.ErrEventNotFound)
	}
	return event, nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/registrations", h.CreateRegistration)
	router.GET("/api/events/:slug/coupons/:code", h.ValidateCoupon)
	router.POST("/api/webhooks/payment", h.PaymentCallback)
	return router
}

func TestCreateRegistration(t *testing.T) {
	t.Parallel()
	regSvc := &fakeRegService{}
	h := NewHandler(regSvc, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	body, _ := json.Marshal(map[string]any{
		"eventId":    int64(1),
		"name":       "张三",
		"email":      "zhangsan@example.com",
		"couponCode": "VIP50",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, float64(1001), resp["id"])
	assert.Equal(t, string(domain.RegistrationStatusPending), resp["status"])
	assert.Equal(t, "VIP50", regSvc.created.CouponCode)
}

func TestCreateRegistrationBadRequest(t *testing.T) {
	t.Parallel()
	h := NewHandler(&fakeRegService{}, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	// 缺 email
	body := []byte(`{"eventId": 1, "name": "张三"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateRegistrationInvalidCoupon(t *testing.T) {
	t.Parallel()
	regSvc := &fakeRegService{createErr: fmt.Errorf("%w: 优惠券不可用", errs.ErrInvalidParameter)}
	h := NewHandler(regSvc, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	body := []byte(`{"eventId": 1, "name": "张三", "email": "a@b.com", "couponCode": "nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestValidateCoupon(t *testing.T) {
	t.Parallel()
	events := &fakeEventRepo{events: map[string]domain.Event{
		"gophercon-2024": {ID: 1, Slug: "gophercon-2024", Year: 2024, StartsAt: time.Now(), BasePrice: 50000, Active: true},
	}}
	couponSvc := &fakeCouponService{result: domain.ValidationResult{
		Outcome:  domain.OutcomeValid,
		Discount: 5000,
		CouponID: 9,
	}}
	h := NewHandler(&fakeRegService{}, couponSvc, events)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/events/gophercon-2024/coupons/VIP50", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, float64(5000), resp["discount"])
	assert.Equal(t, float64(45000), resp["payable"])
}

func TestValidateCouponUnknownEvent(t *testing.T) {
	t.Parallel()
	h := NewHandler(&fakeRegService{}, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/events/nope/coupons/VIP50", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPaymentCallback(t *testing.T) {
	t.Parallel()
	regSvc := &fakeRegService{confirmed: domain.Registration{ID: 1001, Status: domain.RegistrationStatusPending}}
	h := NewHandler(regSvc, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	body := []byte(`{"registrationId": 1001}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.RegistrationStatusConfirmed), resp["status"])
}

func TestPaymentCallbackUnknownRegistration(t *testing.T) {
	t.Parallel()
	h := NewHandler(&fakeRegService{}, &fakeCouponService{}, &fakeEventRepo{})
	router := newTestRouter(h)

	body := []byte(`{"registrationId": 404}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
