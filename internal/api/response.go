package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keene2/meme-server/internal/swap"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Success: false, Error: message})
}

// failFromError maps the error taxonomy onto HTTP statuses while
// keeping the upstream/stage message intact, so "not sent", "sent but
// rejected" and "sent and failed on-chain" stay distinguishable.
func failFromError(c echo.Context, err error) error {
	var upstream *swap.UpstreamError
	switch {
	case errors.Is(err, swap.ErrDecode):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		return fail(c, http.StatusBadGateway, upstream.Error())
	case errors.Is(err, swap.ErrConfirmationTimeout):
		return fail(c, http.StatusGatewayTimeout, err.Error())
	default:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
}
