package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/server/middleware"
)

type GetBoardPresenceInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type GetBoardPresenceOutput struct {
	Body struct {
		Users []uuid.UUID `json:"users" doc:"User IDs currently connected to the board"`
	}
}

func RegisterBoardRoutes(api huma.API, presence PresenceSource) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board-presence",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/presence",
		Summary:     "List users currently present on a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardPresenceInput) (*GetBoardPresenceOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		out := &GetBoardPresenceOutput{}
		out.Body.Users = presence.Users(input.BoardID)
		return out, nil
	})
}
