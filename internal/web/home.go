package web

import (
	"net/http"

	"ProductDash/internal/api"
)

type homeData struct {
	Title    string
	Mock     bool
	Backends []Backend
}

func (s *server) home(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "home", homeData{
		Title:    "Product Dashboard",
		Mock:     s.deps.Mode == api.ModeMock,
		Backends: s.deps.Backends,
	})
}
