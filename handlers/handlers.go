package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"magazin-backend/utils"
)

// Handler carries the dependencies every route handler needs. The mongo
// client is kept alongside the database so multi-document operations can
// open sessions for transactions.
type Handler struct {
	Client    *mongo.Client
	DB        *mongo.Database
	Mailer    *utils.Mailer
	UploadDir string
}

func New(client *mongo.Client, db *mongo.Database, mailer *utils.Mailer, uploadDir string) *Handler {
	return &Handler{
		Client:    client,
		DB:        db,
		Mailer:    mailer,
		UploadDir: uploadDir,
	}
}

// opContext bounds a database operation to the request with a timeout.
func opContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 10*time.Second)
}

// HTTPErrorHandler renders every failure as the uniform envelope
// {"success": false, "error": <message>}.
func HTTPErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := err.Error()

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"success": false, "error": message})
}
