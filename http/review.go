package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/JimmyYuu29/cartarev"
)

type schemaInfo struct {
	DocType string `json:"docType"`
	Title   string `json:"title"`
}

func (s *Server) handleSchemaList(w http.ResponseWriter, r *http.Request) {
	infos := []schemaInfo{}
	for _, docType := range s.Schemas.DocTypes() {
		schema, err := s.Schemas.Schema(docType)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		infos = append(infos, schemaInfo{DocType: schema.DocType, Title: schema.Title})
	}
	writeJSON(w, http.StatusOK, infos)
}

type createReviewRequest struct {
	DocType string         `json:"docType"`
	Data    map[string]any `json:"data"`
}

type validationResponse struct {
	Error        string                     `json:"error"`
	Issues       []cartarev.ValidationIssue `json:"issues,omitempty"`
	Unauthorized []string                   `json:"unauthorizedFields,omitempty"`
}

func (s *Server) handleReviewCreate(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	schema, err := s.Schemas.Schema(req.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := s.Validator.ValidateComplete(schema, req.Data)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "invalid review data",
			Issues: result.Issues,
		})
		return
	}

	review := &cartarev.Review{
		DocType:   schema.DocType,
		Data:      result.Filtered,
		CreatedBy: actor(r),
	}
	if err := s.ReviewService.CreateReview(r.Context(), review); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createReviewResponse{
		Review:     review,
		ManagerURL: review.ManagerLink(s.baseURL()),
	})
}

type createReviewResponse struct {
	Review     *cartarev.Review `json:"review"`
	ManagerURL string           `json:"managerUrl"`
}

func (s *Server) handleReviewList(w http.ResponseWriter, r *http.Request) {
	var filter cartarev.ReviewFilter
	if v := r.URL.Query().Get("docType"); v != "" {
		filter.DocType = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := cartarev.ReviewStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("createdBy"); v != "" {
		filter.CreatedBy = &v
	}
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	reviews, err := s.ReviewService.FindReviews(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleReviewShow(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

type reviewDataResponse struct {
	Data           map[string]any `json:"data"`
	EditableFields []string       `json:"editableFields"`
}

func (s *Server) handleReviewData(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema, err := s.Schemas.Schema(review.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Block custom fields are editable alongside the whitelisted fields.
	editable := schema.EditableFields()
	if editable == nil {
		editable = []string{}
	}
	writeJSON(w, http.StatusOK, reviewDataResponse{
		Data:           review.Data,
		EditableFields: editable,
	})
}

type reviewStatusResponse struct {
	ID           string                `json:"id"`
	Status       cartarev.ReviewStatus `json:"status"`
	SubmittedAt  *time.Time            `json:"submittedAt,omitempty"`
	DownloadedAt *time.Time            `json:"downloadedAt,omitempty"`
}

func (s *Server) handleReviewStatus(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewStatusResponse{
		ID:           review.ID,
		Status:       review.Status,
		SubmittedAt:  review.SubmittedAt,
		DownloadedAt: review.DownloadedAt,
	})
}

func (s *Server) handleReviewSchema(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema, err := s.Schemas.Schema(review.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleReviewDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.ReviewService.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateReviewResponse struct {
	Review       *cartarev.Review `json:"review"`
	Unauthorized []string         `json:"unauthorizedFields,omitempty"`
}

// handleReviewUpdateFields applies whitelisted field changes. Fields outside
// the whitelist are dropped, audited and reported back, never applied.
func (s *Server) handleReviewUpdateFields(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, err := readFields(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	review, err := s.ReviewService.FindReviewByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema, err := s.Schemas.Schema(review.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := s.Validator.ValidateUpdate(schema, fields)
	for _, name := range result.Unauthorized {
		_ = s.ReviewService.AppendAudit(r.Context(), id, cartarev.AuditEntry{
			Action: cartarev.AuditUnauthorizedField,
			Actor:  actor(r),
			Field:  name,
			IP:     clientAddr(r),
		})
	}
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:        "invalid field values",
			Issues:       result.Issues,
			Unauthorized: result.Unauthorized,
		})
		return
	}

	if len(result.Filtered) > 0 {
		review, err = s.ReviewService.UpdateReviewData(r.Context(), id, cartarev.ReviewUpdate{
			Fields: result.Filtered,
			Actor:  actor(r),
			IP:     clientAddr(r),
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, updateReviewResponse{
		Review:       review,
		Unauthorized: result.Unauthorized,
	})
}

// handleReviewSubmit freezes a draft after a final completeness check.
func (s *Server) handleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	review, err := s.ReviewService.FindReviewByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema, err := s.Schemas.Schema(review.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result := s.Validator.ValidateComplete(schema, review.Data); !result.Valid {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "review is incomplete",
			Issues: result.Issues,
		})
		return
	}

	review, err = s.ReviewService.SubmitReview(r.Context(), id, actor(r), clientAddr(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

type issueCodeRequest struct {
	SupervisorID string `json:"supervisorId"`
}

type issueCodeResponse struct {
	Code       string `json:"code"`
	ExpiresAt  string `json:"expiresAt"`
	ManagerURL string `json:"managerUrl"`
}

func (s *Server) handleApprovalCodeIssue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req issueCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	code, err := s.Auth.IssueCode(r.Context(), id, req.SupervisorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	review, err := s.ReviewService.FindReviewByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueCodeResponse{
		Code:       code.Code,
		ExpiresAt:  code.ExpiresAt.Format(time.RFC3339),
		ManagerURL: review.ManagerLink(s.baseURL()),
	})
}

func (s *Server) handleReviewAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ReviewService.AuditLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReviewPreview(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema, err := s.Schemas.Schema(review.DocType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.Pipeline.Render(r.Context(), review)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	blocks := make([]cartarev.PreviewBlock, 0, len(schema.Blocks))
	for i := range schema.Blocks {
		def := &schema.Blocks[i]
		custom, _ := review.Data[def.CustomField].(string)
		blocks = append(blocks, cartarev.PreviewBlock{
			Key:         def.Key,
			CustomField: def.CustomField,
			CustomValue: custom,
			CustomType:  def.CustomType,
			AppendMode:  def.AppendMode,
			Label:       def.Label,
			MaxLength:   def.MaxLength,
			Description: def.Description,
		})
	}

	page, err := s.Pages.RenderPreview(r.Context(), cartarev.PreviewParams{
		Schema:         schema,
		ReviewID:       review.ID,
		Status:         review.Status,
		CanEdit:        review.CanEdit(),
		EditableFields: schema.EditableFields(),
		BodyHTML:       result.HTML,
		Blocks:         blocks,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// handleReviewExport renders the review and converts the HTML projection to
// Markdown.
func (s *Server) handleReviewExport(w http.ResponseWriter, r *http.Request) {
	review, err := s.ReviewService.FindReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.Pipeline.Render(r.Context(), review)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markdown, err := s.Converter.Convert(result.HTML)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(markdown))
}

// readFields accepts the update payload either as JSON or as a form post
// from the preview page.
func readFields(r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var fields map[string]any
		if err := decodeJSON(r, &fields); err != nil {
			return nil, err
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, cartarev.Errorf(cartarev.EINVALID, "invalid form body")
	}
	fields := make(map[string]any, len(r.PostForm))
	for name, values := range r.PostForm {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	return fields, nil
}
