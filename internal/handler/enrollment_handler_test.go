package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevateforhumanity/workforce-api/internal/middleware"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type fakeEnrollmentSrv struct {
	result      *service.EnrollmentResult
	err         error
	credential  *service.CredentialDecision
	access      *service.AccessDecision
	lastUser    string
	lastProgram string
}

func (f *fakeEnrollmentSrv) Create(_ context.Context, userID, programID string) (*service.EnrollmentResult, error) {
	f.lastUser = userID
	f.lastProgram = programID
	return f.result, f.err
}

func (f *fakeEnrollmentSrv) CanIssueCredential(context.Context, string) (*service.CredentialDecision, error) {
	return f.credential, f.err
}

func (f *fakeEnrollmentSrv) CheckAcademicAccess(context.Context, string, string) (*service.AccessDecision, error) {
	return f.access, f.err
}

type fakeResolverSrv struct {
	enrollments []models.NormalizedEnrollment
	active      []models.NormalizedEnrollment
	err         error
}

func (f *fakeResolverSrv) GetUserEnrollments(context.Context, string) ([]models.NormalizedEnrollment, error) {
	return f.enrollments, f.err
}

func (f *fakeResolverSrv) GetActiveEnrollments(context.Context, string) ([]models.NormalizedEnrollment, error) {
	return f.active, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func authedContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})
	return c, rec
}

func TestEnrollmentHandlerCreateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeResolverSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(`{"program_id":"BARBER"}`))

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnrollmentHandlerCreateMissingProgram(t *testing.T) {
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeResolverSrv{})
	c, rec := authedContext(t, http.MethodPost, "/enrollments", `{}`)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrollmentHandlerCreateSuccess(t *testing.T) {
	srv := &fakeEnrollmentSrv{result: &service.EnrollmentResult{
		EnrollmentID:   "e1",
		FundingPathway: models.PathwayWorkforceFunded,
		Status:         models.EnrollmentStatusActive,
		PaymentSetup:   &service.PaymentSetup{Type: "workforce_funded", Required: false},
		Message:        "Enrollment active.",
	}}
	handler := NewEnrollmentHandler(srv, &fakeResolverSrv{})
	c, rec := authedContext(t, http.MethodPost, "/enrollments", `{"program_id":"BARBER"}`)

	handler.Create(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.lastUser)
	assert.Equal(t, "BARBER", srv.lastProgram)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Data["success"])
	assert.Equal(t, "e1", envelope.Data["enrollment_id"])
	assert.Equal(t, "workforce_funded", envelope.Data["funding_pathway"])
}

func TestEnrollmentHandlerCreateBlocked(t *testing.T) {
	blocked := appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrEligibility, "enrollment requirements not met"),
		[]string{"intake not completed for this program"})
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{err: blocked}, &fakeResolverSrv{})
	c, rec := authedContext(t, http.MethodPost, "/enrollments", `{"program_id":"BARBER"}`)

	handler.Create(c)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ENROLLMENT_BLOCKED", envelope.Error["code"])
}

func TestEnrollmentHandlerCreateConflict(t *testing.T) {
	conflict := appErrors.WithMeta(
		appErrors.Clone(appErrors.ErrConflict, "already enrolled in this program"),
		map[string]interface{}{"enrollment_id": "e0"})
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{err: conflict}, &fakeResolverSrv{})
	c, rec := authedContext(t, http.MethodPost, "/enrollments", `{"program_id":"BARBER"}`)

	handler.Create(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	meta, ok := envelope.Error["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "e0", meta["enrollment_id"])
}

func TestEnrollmentHandlerList(t *testing.T) {
	resolver := &fakeResolverSrv{enrollments: []models.NormalizedEnrollment{
		{ID: "c1", Source: models.SourceCourseEnrollments, DeliveryMode: models.DeliveryModeInternal},
	}}
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, resolver)
	c, rec := authedContext(t, http.MethodGet, "/enrollments", "")

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"delivery_mode":"internal"`)
}

func TestEnrollmentHandlerAccess(t *testing.T) {
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{access: &service.AccessDecision{
		HasAccess: false, Reason: "down payment not yet received",
	}}, &fakeResolverSrv{})
	c, rec := authedContext(t, http.MethodGet, "/enrollments/e1/access", "")
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.Access(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "down payment not yet received")
}
