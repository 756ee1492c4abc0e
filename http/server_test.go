package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/auth"
	"github.com/JimmyYuu29/cartarev/bluemonday"
	"github.com/JimmyYuu29/cartarev/etree"
	cartahtml "github.com/JimmyYuu29/cartarev/html"
	cartahttp "github.com/JimmyYuu29/cartarev/http"
	"github.com/JimmyYuu29/cartarev/htmltomarkdown"
	"github.com/JimmyYuu29/cartarev/mock"
	"github.com/JimmyYuu29/cartarev/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHTMLTemplate = `<p>Cliente: {{ Nombre_Cliente }}</p>
[[BLOCK:alcance]]El alcance cubre {{ Nombre_Cliente }}.[[/BLOCK]]`

// fixture is an in-memory backend behind a fully wired server.
type fixture struct {
	server  *cartahttp.Server
	reviews map[string]*cartarev.Review
	audit   map[string][]cartarev.AuditEntry
	codes   map[string]*cartarev.ApprovalCode
	tokens  map[string]*cartarev.DownloadToken
}

func testSchema() *cartarev.DocumentSchema {
	return &cartarev.DocumentSchema{
		DocType: "carta_manifestaciones",
		Title:   "Carta de Manifestaciones",
		Fields: map[string]cartarev.FieldSpec{
			"Nombre_Cliente": {Type: cartarev.FieldString, Editable: true, Required: true},
			"Importe_Neto":   {Type: cartarev.FieldNumber},
		},
		Blocks: []cartarev.BlockDefinition{
			{
				Key:         "alcance",
				CustomField: "alcance_custom",
				AppendMode:  cartarev.AppendLabelled,
				Label:       "Nota",
				CustomType:  cartarev.CustomRichText,
				MaxLength:   2000,
			},
		},
		Formats:      cartarev.Formats{}.WithDefaults(),
		HTMLTemplate: "carta.html",
		DocxTemplate: "carta.docx",
	}
}

func testDocxTemplate(t *testing.T) []byte {
	t.Helper()
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Cliente: {{ Nombre_Cliente }}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{ __block_alcance__ }}</w:t></w:r></w:p>
</w:body></w:document>`

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		reviews: make(map[string]*cartarev.Review),
		audit:   make(map[string][]cartarev.AuditEntry),
		codes:   make(map[string]*cartarev.ApprovalCode),
		tokens:  make(map[string]*cartarev.DownloadToken),
	}

	schema := testSchema()
	registry := &mock.SchemaRegistry{
		SchemaFn: func(docType string) (*cartarev.DocumentSchema, error) {
			if docType != schema.DocType {
				return nil, cartarev.Errorf(cartarev.ENOTFOUND, "unknown document type %q", docType)
			}
			return schema, nil
		},
		DocTypesFn: func() []string { return []string{schema.DocType} },
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carta.html"), []byte(testHTMLTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carta.docx"), testDocxTemplate(t), 0o644))

	sanitizer := bluemonday.NewSanitizer()

	reviews := &mock.ReviewService{
		CreateReviewFn: func(ctx context.Context, review *cartarev.Review) error {
			review.ID = "rev-1"
			review.Status = cartarev.StatusDraft
			review.CreatedAt = time.Now()
			f.reviews[review.ID] = review
			return nil
		},
		FindReviewByIDFn: func(ctx context.Context, id string) (*cartarev.Review, error) {
			review, ok := f.reviews[id]
			if !ok {
				return nil, cartarev.Errorf(cartarev.ENOTFOUND, "review not found")
			}
			return review, nil
		},
		FindReviewsFn: func(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
			var out []*cartarev.Review
			for _, review := range f.reviews {
				out = append(out, review)
			}
			return out, nil
		},
		UpdateReviewDataFn: func(ctx context.Context, id string, upd cartarev.ReviewUpdate) (*cartarev.Review, error) {
			review := f.reviews[id]
			if !review.CanEdit() {
				return nil, cartarev.Errorf(cartarev.ECONFLICT, "review is no longer editable")
			}
			for name, value := range upd.Fields {
				review.Data[name] = value
			}
			return review, nil
		},
		SubmitReviewFn: func(ctx context.Context, id, actor, ip string) (*cartarev.Review, error) {
			review := f.reviews[id]
			if !review.CanSubmit() {
				return nil, cartarev.Errorf(cartarev.ECONFLICT, "review was already submitted")
			}
			review.Status = cartarev.StatusSubmitted
			return review, nil
		},
		MarkDownloadedFn: func(ctx context.Context, id, actor, ip, userAgent string) (*cartarev.Review, error) {
			review := f.reviews[id]
			review.Status = cartarev.StatusDownloaded
			return review, nil
		},
		AppendAuditFn: func(ctx context.Context, id string, entry cartarev.AuditEntry) error {
			f.audit[id] = append(f.audit[id], entry)
			return nil
		},
		AuditLogFn: func(ctx context.Context, id string) ([]cartarev.AuditEntry, error) {
			return f.audit[id], nil
		},
		DeleteReviewFn: func(ctx context.Context, id string) error {
			if _, ok := f.reviews[id]; !ok {
				return cartarev.Errorf(cartarev.ENOTFOUND, "review not found")
			}
			delete(f.reviews, id)
			return nil
		},
	}

	codes := &mock.ApprovalCodeService{
		CreateCodeFn: func(ctx context.Context, reviewID, supervisorID string, ttl time.Duration) (*cartarev.ApprovalCode, error) {
			code := &cartarev.ApprovalCode{
				Code:         "ABCD1234",
				ReviewID:     reviewID,
				SupervisorID: supervisorID,
				ExpiresAt:    time.Now().Add(ttl),
			}
			f.codes[code.Code] = code
			return code, nil
		},
		FindCodeFn: func(ctx context.Context, code string) (*cartarev.ApprovalCode, error) {
			found, ok := f.codes[strings.ToUpper(strings.TrimSpace(code))]
			if !ok {
				return nil, cartarev.Errorf(cartarev.ENOTFOUND, "approval code not found")
			}
			return found, nil
		},
		ConsumeCodeFn: func(ctx context.Context, code string) error {
			found := f.codes[strings.ToUpper(strings.TrimSpace(code))]
			if found == nil || found.Used {
				return cartarev.Errorf(cartarev.EUNAUTHORIZED, "approval code is no longer valid")
			}
			found.Used = true
			return nil
		},
	}

	tokens := &mock.TokenService{
		CreateTokenFn: func(ctx context.Context, reviewID string, ttl time.Duration) (*cartarev.DownloadToken, error) {
			token := &cartarev.DownloadToken{
				Token:     "tok-1",
				ReviewID:  reviewID,
				ExpiresAt: time.Now().Add(ttl),
			}
			f.tokens[token.Token] = token
			return token, nil
		},
		FindTokenFn: func(ctx context.Context, token string) (*cartarev.DownloadToken, error) {
			found, ok := f.tokens[token]
			if !ok {
				return nil, cartarev.Errorf(cartarev.ENOTFOUND, "download token not found")
			}
			return found, nil
		},
		ConsumeTokenFn: func(ctx context.Context, token, reviewID string) error {
			found := f.tokens[token]
			if found == nil || found.Used || found.ReviewID != reviewID {
				return cartarev.Errorf(cartarev.EUNAUTHORIZED, "download token is no longer valid")
			}
			found.Used = true
			return nil
		},
	}

	supervisors := &mock.SupervisorDirectory{
		SupervisorFn: func(id string) (*cartarev.Supervisor, error) {
			if id != "mgarcia" {
				return nil, cartarev.Errorf(cartarev.ENOTFOUND, "supervisor not found")
			}
			return &cartarev.Supervisor{ID: "mgarcia", Name: "María García", Active: true}, nil
		},
		SupervisorsFn: func() []*cartarev.Supervisor {
			return []*cartarev.Supervisor{{ID: "mgarcia", Name: "María García", Active: true}}
		},
		VerifyPasswordFn: func(id, password string) error {
			if id != "mgarcia" || password != "secreto1" {
				return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid credentials")
			}
			return nil
		},
	}

	pages, err := cartahtml.NewRenderer()
	require.NoError(t, err)

	s := cartahttp.NewServer()
	s.BaseURL = "http://cartas.example.com"
	s.ReviewService = reviews
	s.Schemas = registry
	s.Validator = cartarev.NewValidator(sanitizer)
	s.Auth = auth.NewService(reviews, codes, tokens, supervisors)
	s.Tokens = tokens
	s.Pipeline = render.NewPipeline(registry, etree.NewDocxRenderer(), sanitizer, dir)
	s.Pages = pages
	s.Converter = htmltomarkdown.NewConverter()

	f.server = s
	return f
}

// seedReview installs a review directly in the backend.
func (f *fixture) seedReview(status cartarev.ReviewStatus) *cartarev.Review {
	review := &cartarev.Review{
		ID:      "rev-1",
		DocType: "carta_manifestaciones",
		Status:  status,
		Data: map[string]any{
			"Nombre_Cliente": "ACME S.L.",
			"alcance_custom": "Detalle adicional",
		},
		CreatedBy: "empleado",
	}
	f.reviews[review.ID] = review
	return review
}

func (f *fixture) do(t *testing.T, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "10.0.0.1:54321"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) doJSON(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return f.do(t, method, target, &buf, map[string]string{"Content-Type": "application/json"})
}

func TestReviewCreate(t *testing.T) {
	t.Parallel()

	t.Run("valid data creates a draft", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := f.doJSON(t, "POST", "/reviews", map[string]any{
			"docType": "carta_manifestaciones",
			"data":    map[string]any{"Nombre_Cliente": "ACME S.L."},
		})
		require.Equal(t, stdhttp.StatusCreated, rec.Code)

		var resp struct {
			Review     cartarev.Review `json:"review"`
			ManagerURL string          `json:"managerUrl"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "rev-1", resp.Review.ID)
		assert.Equal(t, cartarev.StatusDraft, resp.Review.Status)
		assert.Equal(t, "http://cartas.example.com/manager/reviews/rev-1", resp.ManagerURL)
	})

	t.Run("missing required field is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := f.doJSON(t, "POST", "/reviews", map[string]any{
			"docType": "carta_manifestaciones",
			"data":    map[string]any{},
		})
		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Nombre_Cliente")
	})

	t.Run("unknown doc type is not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := f.doJSON(t, "POST", "/reviews", map[string]any{"docType": "desconocido"})
		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})
}

func TestReviewUpdateFields(t *testing.T) {
	t.Parallel()

	t.Run("whitelisted fields are applied", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusDraft)

		rec := f.doJSON(t, "POST", "/reviews/rev-1/fields", map[string]any{
			"Nombre_Cliente": "Iberia Consulting",
		})
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "Iberia Consulting", f.reviews["rev-1"].Data["Nombre_Cliente"])
	})

	t.Run("non-whitelisted fields are dropped and audited", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusDraft)

		rec := f.doJSON(t, "POST", "/reviews/rev-1/fields", map[string]any{
			"Nombre_Cliente": "Iberia Consulting",
			"Importe_Neto":   999999,
		})
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Importe_Neto")

		assert.NotEqual(t, 999999, f.reviews["rev-1"].Data["Importe_Neto"])
		require.Len(t, f.audit["rev-1"], 1)
		assert.Equal(t, cartarev.AuditUnauthorizedField, f.audit["rev-1"][0].Action)
		assert.Equal(t, "Importe_Neto", f.audit["rev-1"][0].Field)
	})

	t.Run("submitted reviews reject updates", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.doJSON(t, "POST", "/reviews/rev-1/fields", map[string]any{
			"Nombre_Cliente": "Iberia Consulting",
		})
		assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	})

	t.Run("accepts the preview form encoding", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusDraft)

		form := url.Values{"Nombre_Cliente": {"Iberia Consulting"}}
		rec := f.do(t, "POST", "/reviews/rev-1/fields",
			strings.NewReader(form.Encode()),
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "Iberia Consulting", f.reviews["rev-1"].Data["Nombre_Cliente"])
	})
}

func TestReviewSubmit(t *testing.T) {
	t.Parallel()

	t.Run("complete draft is frozen", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusDraft)

		rec := f.do(t, "POST", "/reviews/rev-1/submit", nil, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, cartarev.StatusSubmitted, f.reviews["rev-1"].Status)
	})

	t.Run("incomplete draft is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		review := f.seedReview(cartarev.StatusDraft)
		delete(review.Data, "Nombre_Cliente")

		rec := f.do(t, "POST", "/reviews/rev-1/submit", nil, nil)
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, cartarev.StatusDraft, f.reviews["rev-1"].Status)
	})

	t.Run("double submit conflicts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.do(t, "POST", "/reviews/rev-1/submit", nil, nil)
		assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	})
}

func TestApprovalCodeIssue(t *testing.T) {
	t.Parallel()

	t.Run("submitted review yields a code and manager link", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.doJSON(t, "POST", "/reviews/rev-1/approval-codes", map[string]any{
			"supervisorId": "mgarcia",
		})
		require.Equal(t, stdhttp.StatusCreated, rec.Code)

		var resp struct {
			Code       string `json:"code"`
			ManagerURL string `json:"managerUrl"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ABCD1234", resp.Code)
		assert.Equal(t, "http://cartas.example.com/manager/reviews/rev-1", resp.ManagerURL)
	})

	t.Run("draft review cannot be approved", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusDraft)

		rec := f.doJSON(t, "POST", "/reviews/rev-1/approval-codes", map[string]any{
			"supervisorId": "mgarcia",
		})
		assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	})
}

func TestReviewPreview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedReview(cartarev.StatusDraft)

	rec := f.do(t, "GET", "/reviews/rev-1/preview", nil, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, `<span data-var="Nombre_Cliente">ACME S.L.</span>`)
	assert.Contains(t, body, "Guardar cambios")
	assert.Contains(t, body, "alcance_custom")
}

func TestReviewExport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedReview(cartarev.StatusDraft)

	rec := f.do(t, "GET", "/reviews/rev-1/export", nil, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "ACME S.L.")
}

func TestReviewData(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedReview(cartarev.StatusDraft)

	rec := f.do(t, "GET", "/reviews/rev-1/data", nil, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data           map[string]any `json:"data"`
		EditableFields []string       `json:"editableFields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ACME S.L.", resp.Data["Nombre_Cliente"])
	assert.ElementsMatch(t, []string{"Nombre_Cliente", "alcance_custom"}, resp.EditableFields)
}

func TestReviewStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedReview(cartarev.StatusSubmitted)

	rec := f.do(t, "GET", "/reviews/rev-1/status", nil, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"SUBMITTED"`)
}

func TestManagerInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedReview(cartarev.StatusSubmitted)

	rec := f.do(t, "GET", "/manager/reviews/rev-1/info", nil, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Carta de Manifestaciones")
	assert.Contains(t, body, `"status":"SUBMITTED"`)
	assert.NotContains(t, body, "ACME S.L.")
}

func TestManagerAudit(t *testing.T) {
	t.Parallel()

	t.Run("requires a live token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.do(t, "GET", "/manager/reviews/rev-1/audit", nil, nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})

	t.Run("returns entries without consuming the token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)
		f.audit["rev-1"] = []cartarev.AuditEntry{{Action: cartarev.AuditSubmit, Actor: "empleado"}}
		f.tokens["tok-1"] = &cartarev.DownloadToken{
			Token: "tok-1", ReviewID: "rev-1", ExpiresAt: time.Now().Add(time.Minute),
		}

		rec := f.do(t, "GET", "/manager/reviews/rev-1/audit?token=tok-1", nil, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), cartarev.AuditSubmit)
		assert.False(t, f.tokens["tok-1"].Used)
	})
}

func TestManagerFlow(t *testing.T) {
	t.Parallel()

	t.Run("page shows the approval form", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.do(t, "GET", "/manager/reviews/rev-1/", nil, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "María García")
		assert.Contains(t, rec.Body.String(), "Código de aprobación")
	})

	t.Run("wrong password re-renders the form with a neutral error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)
		f.codes["ABCD1234"] = &cartarev.ApprovalCode{
			Code: "ABCD1234", ReviewID: "rev-1", SupervisorID: "mgarcia",
			ExpiresAt: time.Now().Add(time.Hour),
		}

		form := url.Values{
			"supervisor_id": {"mgarcia"},
			"code":          {"ABCD1234"},
			"password":      {"equivocada"},
		}
		rec := f.do(t, "POST", "/manager/reviews/rev-1/",
			strings.NewReader(form.Encode()),
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid code or credentials")
		assert.NotContains(t, rec.Body.String(), "Descargar documento")
	})

	t.Run("valid redemption yields a single-use download", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)
		f.codes["ABCD1234"] = &cartarev.ApprovalCode{
			Code: "ABCD1234", ReviewID: "rev-1", SupervisorID: "mgarcia",
			ExpiresAt: time.Now().Add(time.Hour),
		}

		form := url.Values{
			"supervisor_id": {"mgarcia"},
			"code":          {"ABCD1234"},
			"password":      {"secreto1"},
		}
		rec := f.do(t, "POST", "/manager/reviews/rev-1/",
			strings.NewReader(form.Encode()),
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/manager/reviews/rev-1/download?token=tok-1")

		rec = f.do(t, "GET", "/manager/reviews/rev-1/download?token=tok-1", nil, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, cartarev.DocxMediaType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Carta_Manifestacion_ACME_SL_")
		assert.Equal(t, cartarev.StatusDownloaded, f.reviews["rev-1"].Status)

		rec = f.do(t, "GET", "/manager/reviews/rev-1/download?token=tok-1", nil, nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})

	t.Run("download without a token is unauthorized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedReview(cartarev.StatusSubmitted)

		rec := f.do(t, "GET", "/manager/reviews/rev-1/download", nil, nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}
