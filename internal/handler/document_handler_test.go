package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevateforhumanity/workforce-api/internal/middleware"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
)

type fakeDocumentSrv struct {
	uploadRes    *service.UploadResult
	uploadErr    error
	views        []models.DocumentStatusView
	complete     bool
	lastUpload   service.DocumentUpload
	lastID       string
	lastPartner  string
	lastAccept   bool
	lastReviewer string
}

func (f *fakeDocumentSrv) Upload(_ context.Context, partnerID string, upload service.DocumentUpload) (*service.UploadResult, error) {
	f.lastID = partnerID
	f.lastUpload = upload
	return f.uploadRes, f.uploadErr
}

func (f *fakeDocumentSrv) ListStatus(_ context.Context, partnerID string) ([]models.DocumentStatusView, bool, error) {
	f.lastID = partnerID
	return f.views, f.complete, nil
}

func (f *fakeDocumentSrv) Review(_ context.Context, partnerID, documentID string, accept bool, reviewedBy string) (*models.PartnerDocument, models.PartnerStatus, error) {
	f.lastPartner = partnerID
	f.lastID = documentID
	f.lastAccept = accept
	f.lastReviewer = reviewedBy
	if f.uploadErr != nil {
		return nil, "", f.uploadErr
	}
	return &models.PartnerDocument{ID: documentID, Status: models.DocumentStatusAccepted}, models.PartnerStatusActive, nil
}

func (f *fakeDocumentSrv) Remove(_ context.Context, partnerID, documentID string) error {
	f.lastPartner = partnerID
	f.lastID = documentID
	return f.uploadErr
}

func (f *fakeDocumentSrv) DownloadToken(_ context.Context, partnerID, documentID string) (string, time.Time, error) {
	f.lastPartner = partnerID
	f.lastID = documentID
	return "signed-token", time.Now().Add(time.Hour), nil
}

func (f *fakeDocumentSrv) ResolveDownload(context.Context, string) (*models.PartnerDocument, *os.File, error) {
	return nil, nil, os.ErrNotExist
}

func multipartUpload(t *testing.T, docType string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "mou.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("document_type", docType))
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func partnerContext(t *testing.T, partnerID string, claims *models.JWTClaims, method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request = httptest.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	c.Params = gin.Params{{Key: "id", Value: partnerID}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestDocumentHandlerUploadSuccess(t *testing.T) {
	reviewer := "system"
	srv := &fakeDocumentSrv{uploadRes: &service.UploadResult{
		Document: &models.PartnerDocument{
			ID: "d1", PartnerID: "p1", DocumentType: models.DocumentTypeMOU,
			Status: models.DocumentStatusAccepted, ReviewedBy: &reviewer,
		},
		AllDocsComplete: false,
		PartnerStatus:   models.PartnerStatusSubmitted,
	}}
	handler := NewDocumentHandler(srv)

	body, contentType := multipartUpload(t, "mou")
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	c, rec := partnerContext(t, "p1", admin, http.MethodPost, "/partners/p1/documents", body, contentType)

	handler.Upload(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", srv.lastID)
	assert.Equal(t, "mou", srv.lastUpload.DocumentType)
	assert.Equal(t, "mou.pdf", srv.lastUpload.FileName)
	assert.True(t, srv.lastUpload.SizeBytes > 0)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Data["success"])
	assert.Equal(t, false, envelope.Data["all_docs_complete"])
}

func TestDocumentHandlerUploadMissingFile(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	c, rec := partnerContext(t, "p1", admin, http.MethodPost, "/partners/p1/documents", nil, "")

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerPartnerScopeMismatch(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	otherPartner := "p2"
	claims := &models.JWTClaims{UserID: "u1", Role: models.RolePartner, PartnerID: &otherPartner}
	body, contentType := multipartUpload(t, "mou")
	c, rec := partnerContext(t, "p1", claims, http.MethodPost, "/partners/p1/documents", body, contentType)

	handler.Upload(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentHandlerPartnerScopeMatch(t *testing.T) {
	srv := &fakeDocumentSrv{uploadRes: &service.UploadResult{
		Document:      &models.PartnerDocument{ID: "d1"},
		PartnerStatus: models.PartnerStatusSubmitted,
	}}
	handler := NewDocumentHandler(srv)
	ownPartner := "p1"
	claims := &models.JWTClaims{UserID: "u1", Role: models.RolePartner, PartnerID: &ownPartner}
	body, contentType := multipartUpload(t, "w9")
	c, rec := partnerContext(t, "p1", claims, http.MethodPost, "/partners/p1/documents", body, contentType)

	handler.Upload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentHandlerStatus(t *testing.T) {
	srv := &fakeDocumentSrv{
		views: []models.DocumentStatusView{
			{RequiredType: models.DocumentTypeMOU, Uploaded: true, Status: models.DocumentStatusAccepted},
			{RequiredType: models.DocumentTypeW9},
		},
		complete: false,
	}
	handler := NewDocumentHandler(srv)
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	c, rec := partnerContext(t, "p1", admin, http.MethodGet, "/partners/p1/documents/status", nil, "")

	handler.Status(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Data["all_docs_complete"])
}

func TestDocumentHandlerDownloadURL(t *testing.T) {
	srv := &fakeDocumentSrv{}
	handler := NewDocumentHandler(srv)
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	c, rec := partnerContext(t, "p1", admin, http.MethodGet, "/partners/p1/documents/d1/download-url", nil, "")
	c.Params = append(c.Params, gin.Param{Key: "docId", Value: "d1"})

	handler.DownloadURL(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed-token")
	assert.Equal(t, "p1", srv.lastPartner)
	assert.Equal(t, "d1", srv.lastID)
}

func TestDocumentHandlerDownloadURLScopesToAddressedPartner(t *testing.T) {
	srv := &fakeDocumentSrv{}
	handler := NewDocumentHandler(srv)
	ownPartner := "p1"
	claims := &models.JWTClaims{UserID: "u1", Role: models.RolePartner, PartnerID: &ownPartner}
	c, rec := partnerContext(t, "p1", claims, http.MethodGet, "/partners/p1/documents/d9/download-url", nil, "")
	c.Params = append(c.Params, gin.Param{Key: "docId", Value: "d9"})

	handler.DownloadURL(c)

	// The service receives the caller's own partner id alongside the
	// document id, so a document owned by another partner cannot be signed.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", srv.lastPartner)
	assert.Equal(t, "d9", srv.lastID)
}

func TestDocumentHandlerReview(t *testing.T) {
	srv := &fakeDocumentSrv{}
	handler := NewDocumentHandler(srv)
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	body := bytes.NewBufferString(`{"accept":true}`)
	c, rec := partnerContext(t, "p1", admin, http.MethodPost, "/partners/p1/documents/d1/review", body, "application/json")
	c.Params = append(c.Params, gin.Param{Key: "docId", Value: "d1"})

	handler.Review(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", srv.lastPartner)
	assert.Equal(t, "d1", srv.lastID)
	assert.True(t, srv.lastAccept)
	assert.Equal(t, "a1", srv.lastReviewer)
}

func TestDocumentHandlerReviewMissingDecision(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	body := bytes.NewBufferString(`{}`)
	c, rec := partnerContext(t, "p1", admin, http.MethodPost, "/partners/p1/documents/d1/review", body, "application/json")
	c.Params = append(c.Params, gin.Param{Key: "docId", Value: "d1"})

	handler.Review(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerDelete(t *testing.T) {
	srv := &fakeDocumentSrv{}
	handler := NewDocumentHandler(srv)
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	c, rec := partnerContext(t, "p1", admin, http.MethodDelete, "/partners/p1/documents/d1", nil, "")
	c.Params = append(c.Params, gin.Param{Key: "docId", Value: "d1"})

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "p1", srv.lastPartner)
	assert.Equal(t, "d1", srv.lastID)
}

func TestDocumentHandlerDownloadRequiresToken(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents/download", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
