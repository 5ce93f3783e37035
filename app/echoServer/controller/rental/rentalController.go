package rental

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/vaqsi1990/cloth-sub001/model"
	rs "github.com/vaqsi1990/cloth-sub001/service/rental"
)

const dateLayout = "2006-01-02"

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	start, _ := time.Parse(dateLayout, req.Start)
	end, _ := time.Parse(dateLayout, req.End)
	uid, _ := c.Get("renter_id").(int64)

	b, err := h.Svc.Create(c.Request().Context(), rs.CreateInput{
		RenterID:    uid,
		ItemID:      req.ItemID,
		VariantID:   req.VariantID,
		Start:       start,
		End:         end,
		PricePerDay: req.PricePerDay,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		return h.fail(c, "rental create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": b})
}

// PATCH /v1/rentals/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("renter_id").(int64)

	var in rs.UpdateInput
	if req.Status != nil {
		st := model.BookingStatus(*req.Status)
		in.Status = &st
	}
	if req.Start != nil {
		t, _ := time.Parse(dateLayout, *req.Start)
		in.Start = &t
	}
	if req.End != nil {
		t, _ := time.Parse(dateLayout, *req.End)
		in.End = &t
	}

	b, err := h.Svc.Update(c.Request().Context(), uid, id, in)
	if err != nil {
		if rs.Code(err) == rs.ErrPartialFailure {
			// Ledger committed; only the inventory step is outstanding.
			return c.JSON(http.StatusMultiStatus, echo.Map{
				"data":    b,
				"message": "booking updated but inventory sync pending, retry resync",
			})
		}
		return h.fail(c, "rental update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// DELETE /v1/rentals/:id
func (h *Controller) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("renter_id").(int64)

	b, err := h.Svc.Cancel(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "rental cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b, "message": "canceled"})
}

// POST /v1/rentals/:id/resync
func (h *Controller) Resync(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("renter_id").(int64)

	if err := h.Svc.Resync(c.Request().Context(), uid, id); err != nil {
		return h.fail(c, "rental resync", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "synced"})
}

// GET /v1/rentals?status=&item_id=&page=&limit=
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("renter_id").(int64)
	itemID, _ := strconv.ParseInt(c.QueryParam("item_id"), 10, 64)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	rows, err := h.Svc.List(c.Request().Context(), rs.ListFilter{
		RenterID: uid,
		ItemID:   itemID,
		Status:   model.BookingStatus(c.QueryParam("status")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return h.fail(c, "rental list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch rs.Code(err) {
	case rs.ErrInvalidRange, rs.ErrNotRentable, rs.ErrInvalidTransition:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": string(rs.Code(err))})
	case rs.ErrConflict:
		var ce *rs.ConflictError
		if errors.As(err, &ce) {
			return c.JSON(http.StatusConflict, echo.Map{
				"message":  "dates unavailable",
				"conflict": ce,
			})
		}
		return c.JSON(http.StatusConflict, echo.Map{"message": "dates unavailable"})
	case rs.ErrDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{"message": "duplicate request"})
	case rs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
