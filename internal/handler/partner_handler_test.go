package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type fakePartnerSrv struct {
	partner   *models.Partner
	partners  []models.Partner
	report    *service.ComplianceReport
	err       error
	lastReq   service.RegisterPartnerRequest
	lastFmt   string
	lastQuery string
}

func (f *fakePartnerSrv) Register(_ context.Context, req service.RegisterPartnerRequest) (*models.Partner, error) {
	f.lastReq = req
	return f.partner, f.err
}

func (f *fakePartnerSrv) Get(_ context.Context, id string) (*models.Partner, error) {
	f.lastQuery = id
	if f.err != nil {
		return nil, f.err
	}
	return f.partner, nil
}

func (f *fakePartnerSrv) List(context.Context, int, int) ([]models.Partner, error) {
	return f.partners, f.err
}

func (f *fakePartnerSrv) BuildComplianceReport(_ context.Context, partnerID, format string) (*service.ComplianceReport, error) {
	f.lastQuery = partnerID
	f.lastFmt = format
	return f.report, f.err
}

func TestPartnerHandlerRegisterSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePartnerSrv{partner: &models.Partner{ID: "p1", LegalName: "Acme", Status: models.PartnerStatusDraft}}
	handler := NewPartnerHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/partners", strings.NewReader(`{"legal_name":"Acme","programs":["BARBER"]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Acme", srv.lastReq.LegalName)
	assert.Contains(t, rec.Body.String(), `"status":"draft"`)
}

func TestPartnerHandlerRegisterInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPartnerHandler(&fakePartnerSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/partners", strings.NewReader(`{"legal_name":"A"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPartnerHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPartnerHandler(&fakePartnerSrv{err: appErrors.Clone(appErrors.ErrNotFound, "partner not found")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/partners/p9", nil)
	c.Params = gin.Params{{Key: "id", Value: "p9"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPartnerHandlerComplianceReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePartnerSrv{report: &service.ComplianceReport{
		FileName:    "compliance_p1_20260101.csv",
		ContentType: "text/csv",
		Content:     []byte("Document,Uploaded,Status\n"),
	}}
	handler := NewPartnerHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/partners/p1/compliance-report?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}

	handler.ComplianceReport(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.lastFmt)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "compliance_p1_20260101.csv")
	assert.Contains(t, rec.Body.String(), "Document,Uploaded,Status")
}
