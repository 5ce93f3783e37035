package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	itemctrl "github.com/vaqsi1990/cloth-sub001/app/echoServer/controller/item"
	rentalctrl "github.com/vaqsi1990/cloth-sub001/app/echoServer/controller/rental"
)

type C struct {
	Rental    *rentalctrl.Controller
	Item      *itemctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// The identity provider lives outside this service; all it hands us is
	// the renter id in the token subject. Blocked-renter checks happen in
	// the engine against the users table.
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))
	auth.Use(renterID)

	auth.POST("/rentals", c.Rental.Create)
	auth.GET("/rentals", c.Rental.List)
	auth.PATCH("/rentals/:id", c.Rental.Update)
	auth.DELETE("/rentals/:id", c.Rental.Cancel)
	auth.POST("/rentals/:id/resync", c.Rental.Resync)

	auth.GET("/items/:id/availability", c.Item.Availability)
}

// renterID pulls the subject claim out of the verified token.
func renterID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		token, ok := ctx.Get("user").(*jwt.Token)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		ctx.Set("renter_id", int64(sub))
		return next(ctx)
	}
}
