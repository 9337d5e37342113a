package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ProductDash/internal/product"
	"ProductDash/internal/view"
	"ProductDash/pkg/kit"
)

type adminData struct {
	Title     string
	State     view.AdminState
	Form      view.Form
	FormError string
	Toasts    []view.Toast
}

func (s *server) adminView(n view.Notifier) *view.AdminView {
	return view.NewAdminView(s.deps.Admin, n, s.deps.Metrics, s.log)
}

func (s *server) adminPage(w http.ResponseWriter, r *http.Request) {
	v := s.adminView(nil)
	_ = v.Load(r.Context())

	data := adminData{
		Title:  "Admin",
		State:  v.State(),
		Toasts: toastsFromQuery(r.URL.Query()),
	}

	if raw := r.URL.Query().Get("edit"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			if i := product.Index(data.State.Products, id); i >= 0 {
				p := data.State.Products[i]
				data.Form = view.Form{ID: p.ID, Title: p.Title, Image: p.Image}
			}
		}
	}

	s.render(w, http.StatusOK, "admin", data)
}

func (s *server) createProduct(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, 0)
}

func (s *server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.submit(w, r, id)
}

func (s *server) submit(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseForm(); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid form", nil)
		return
	}
	form := view.Form{
		ID:    id,
		Title: r.PostFormValue("title"),
		Image: r.PostFormValue("image"),
	}

	rec := &view.Recorder{}
	v := s.adminView(rec)
	if _, err := v.Submit(r.Context(), form); err != nil {
		s.rerender(w, r, v, form, rec, err)
		return
	}

	redirectWithToasts(w, r, "/admin", rec.Drain())
}

// rerender shows the admin page again with the rejected form filled in.
func (s *server) rerender(w http.ResponseWriter, r *http.Request, v *view.AdminView, form view.Form, rec *view.Recorder, err error) {
	status := http.StatusBadGateway
	data := adminData{Title: "Admin", Form: form}

	var verr *product.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		data.FormError = verr.Message
	case errors.Is(err, product.ErrNotFound):
		status = http.StatusNotFound
	}

	_ = v.Load(r.Context())
	data.State = v.State()
	data.Toasts = rec.Drain()
	s.render(w, status, "admin", data)
}

func (s *server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	rec := &view.Recorder{}
	_ = s.adminView(rec).Delete(r.Context(), id)
	redirectWithToasts(w, r, "/admin", rec.Drain())
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

// Toasts survive the post/redirect/get hop as query parameters named after
// their kind.
func redirectWithToasts(w http.ResponseWriter, r *http.Request, path string, toasts []view.Toast) {
	q := url.Values{}
	for _, t := range toasts {
		q.Add(t.Kind, t.Message)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func toastsFromQuery(q url.Values) []view.Toast {
	var out []view.Toast
	for _, kind := range []string{view.ToastSuccess, view.ToastError} {
		for _, msg := range q[kind] {
			if msg = strings.TrimSpace(msg); msg != "" {
				out = append(out, view.Toast{Kind: kind, Message: msg})
			}
		}
	}
	return out
}
