package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/flowdeck/collab/internal/api/v1"
	"github.com/flowdeck/collab/internal/store/postgres"
	"github.com/flowdeck/collab/internal/ws"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, router *ws.Router) {
	v1.RegisterTaskRoutes(api, store)
	v1.RegisterBoardRoutes(api, router)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board", hub.ServeBoard)
}
