package item

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	rs "github.com/vaqsi1990/cloth-sub001/service/rental"
)

const dateLayout = "2006-01-02"

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

// GET /v1/items/:id/availability?variant_id=&start=&end=
//
// Read-only probe; a 200 here guarantees nothing at booking time, the
// authoritative check runs inside the create transaction.
func (h *Controller) Availability(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	start, err := time.Parse(dateLayout, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid start date"})
	}
	end, err := time.Parse(dateLayout, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid end date"})
	}
	var variantID *int64
	if v := c.QueryParam("variant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid variant_id"})
		}
		variantID = &id
	}

	out, err := h.Svc.CheckAvailability(c.Request().Context(), itemID, variantID, start, end)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrInvalidRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "INVALID_RANGE"})
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		default:
			h.Log.Error("availability check", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}
