package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ProductDash/internal/product"
	"ProductDash/internal/view"
	"ProductDash/pkg/kit"
)

const likeTimeout = 30 * time.Second

type catalogData struct {
	Title          string
	State          view.CatalogState
	PollIntervalMS int64
	Toasts         []view.Toast
}

type likeResponse struct {
	Product product.Product `json:"product"`
	Toast   view.Toast      `json:"toast"`
}

func (s *server) catalogPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "catalog", catalogData{
		Title:          "Catalog",
		State:          s.deps.Catalog.State(),
		PollIntervalMS: s.deps.PollInterval.Milliseconds(),
		Toasts:         toastsFromQuery(r.URL.Query()),
	})
}

func (s *server) catalogProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.deps.Catalog.State())
}

func (s *server) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.Refresh(r.Context()); err != nil {
		s.log.Warn("catalog refresh failed", zap.Error(err))
	}
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

func (s *server) likeProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	// A like that reached the backend is not rolled back because the browser
	// went away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), likeTimeout)
	defer cancel()

	p, err := s.deps.Catalog.Like(ctx, id)
	switch {
	case err == nil:
		kit.WriteJSON(w, http.StatusOK, likeResponse{
			Product: p,
			Toast:   view.Toast{Kind: view.ToastSuccess, Message: view.MsgLiked},
		})
	case errors.Is(err, view.ErrInFlight):
		kit.WriteErrorToast(w, r, http.StatusConflict, "This product is already being liked.", map[string]any{"id": id})
	case errors.Is(err, product.ErrNotFound) && p.ID == 0:
		kit.WriteErrorToast(w, r, http.StatusNotFound, "Product not found", map[string]any{"id": id})
	default:
		kit.WriteJSON(w, http.StatusBadGateway, likeResponse{
			Product: p,
			Toast:   view.Toast{Kind: view.ToastError, Message: view.MsgLikeFailed},
		})
	}
}
