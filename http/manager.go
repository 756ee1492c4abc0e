package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/JimmyYuu29/cartarev"
	cartahtml "github.com/JimmyYuu29/cartarev/html"
)

// handleManagerPage shows the supervisor approval form.
func (s *Server) handleManagerPage(w http.ResponseWriter, r *http.Request) {
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
	s.renderManagerPage(w, r, cartahtml.ManagerPage{
		Review:      review,
		Schema:      schema,
		Supervisors: s.Auth.Supervisors.Supervisors(),
	})
}

// handleManagerRedeem exchanges the approval code and password for a
// download link. Authorization failures re-render the form with a neutral
// message; the reason is only in the audit trail. JSON requests get the
// token back as JSON instead of a page.
func (s *Server) handleManagerRedeem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		s.handleManagerRedeemJSON(w, r, id)
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
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, cartarev.Errorf(cartarev.EINVALID, "invalid form body"))
		return
	}

	page := cartahtml.ManagerPage{
		Review:      review,
		Schema:      schema,
		Supervisors: s.Auth.Supervisors.Supervisors(),
	}

	token, err := s.Auth.Redeem(r.Context(), id,
		r.PostFormValue("supervisor_id"),
		r.PostFormValue("code"),
		r.PostFormValue("password"),
		clientAddr(r),
	)
	switch {
	case cartarev.ErrorCode(err) == cartarev.EUNAUTHORIZED:
		page.Error = cartarev.ErrorMessage(err)
	case err != nil:
		s.writeError(w, r, err)
		return
	default:
		page.DownloadURL = fmt.Sprintf("%s/manager/reviews/%s/download?token=%s",
			s.baseURL(), id, url.QueryEscape(token.Token))
	}
	s.renderManagerPage(w, r, page)
}

type redeemRequest struct {
	SupervisorID string `json:"supervisorId"`
	Code         string `json:"code"`
	Password     string `json:"password"`
}

type redeemResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DownloadURL string    `json:"downloadUrl"`
}

func (s *Server) handleManagerRedeemJSON(w http.ResponseWriter, r *http.Request, id string) {
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.Auth.Redeem(r.Context(), id, req.SupervisorID, req.Code, req.Password, clientAddr(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, redeemResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		DownloadURL: fmt.Sprintf("%s/manager/reviews/%s/download?token=%s",
			s.baseURL(), id, url.QueryEscape(token.Token)),
	})
}

// handleManagerDownload serves the Word document against a single-use token.
func (s *Server) handleManagerDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, r, cartarev.Errorf(cartarev.EUNAUTHORIZED, "download token required"))
		return
	}
	if err := s.Tokens.ConsumeToken(r.Context(), token, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	review, err := s.ReviewService.FindReviewByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.Pipeline.Render(r.Context(), review)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(result.Docx) == 0 {
		s.writeError(w, r, cartarev.Errorf(cartarev.EINVALID, "document type %q has no Word template", review.DocType))
		return
	}

	// First download flips the status; repeat downloads via fresh codes only
	// add audit entries.
	if review.Status == cartarev.StatusSubmitted {
		if _, err := s.ReviewService.MarkDownloaded(r.Context(), id, "supervisor", clientAddr(r), r.UserAgent()); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		_ = s.ReviewService.AppendAudit(r.Context(), id, cartarev.AuditEntry{
			Action:    cartarev.AuditDownload,
			Actor:     "supervisor",
			IP:        clientAddr(r),
			UserAgent: r.UserAgent(),
		})
	}

	w.Header().Set("Content-Type", cartarev.DocxMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	_, _ = w.Write(result.Docx)
}

// handleManagerAudit returns the audit trail. It requires a live download
// token, proving the caller went through authorization; the token is not
// consumed.
func (s *Server) handleManagerAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := s.Tokens.FindToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil || token.ReviewID != id || !token.Valid(time.Now()) {
		s.writeError(w, r, cartarev.Errorf(cartarev.EUNAUTHORIZED, "valid download token required"))
		return
	}

	entries, err := s.ReviewService.AuditLog(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type managerInfoResponse struct {
	ID          string                `json:"id"`
	DocType     string                `json:"docType"`
	Title       string                `json:"title"`
	Status      cartarev.ReviewStatus `json:"status"`
	SubmittedAt *time.Time            `json:"submittedAt,omitempty"`
}

// handleManagerInfo returns public review metadata for the approval page.
func (s *Server) handleManagerInfo(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, managerInfoResponse{
		ID:          review.ID,
		DocType:     review.DocType,
		Title:       schema.Title,
		Status:      review.Status,
		SubmittedAt: review.SubmittedAt,
	})
}

func (s *Server) renderManagerPage(w http.ResponseWriter, r *http.Request, page cartahtml.ManagerPage) {
	body, err := s.Pages.RenderManagerPage(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
