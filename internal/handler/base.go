package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/form"
	"github.com/deppfellow/invoices/internal/middleware"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/validation"
)

// Handler carries the shared dependencies concrete handlers embed.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Validated is a pointer to a request type that validates itself. It lets
// Handle allocate a fresh *Req per request.
type Validated[Req any] interface {
	*Req
	validation.Validatable
}

// HandlerFunc is a typed endpoint that receives a bound, validated request.
type HandlerFunc[PReq any, Res any] func(c echo.Context, req PReq) (Res, error)

// FormAction is a typed form endpoint. Field validation is the action's
// job, so its outcome can be reported in the form.Result. A non-nil error
// skips the result and goes to the global error handler.
type FormAction[PReq any] func(c echo.Context, req PReq) (form.Result, error)

// ResponseHandler writes a successful result and tags the transaction.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is set by EnhanceTracing.
}

// FormResponseHandler writes a form.Result: a 303 redirect for browsers,
// otherwise JSON with a status per result kind.
type FormResponseHandler struct{}

func (h FormResponseHandler) Handle(c echo.Context, result interface{}) error {
	return writeFormResult(c, result.(form.Result))
}

func (h FormResponseHandler) GetOperation() string {
	return "form_action"
}

func (h FormResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	if r, ok := result.(form.Result); ok {
		txn.AddAttribute("form.result", string(r.Kind))
	}
}

// StatusFor maps a result kind onto the HTTP status of its JSON rendering.
func StatusFor(kind form.Kind) int {
	switch kind {
	case form.KindInvalid:
		return http.StatusUnprocessableEntity
	case form.KindNotFound:
		return http.StatusNotFound
	case form.KindFailed:
		return http.StatusInternalServerError
	case form.KindRejected:
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

// redirectResponse is what JSON clients get instead of a 303.
type redirectResponse struct {
	Action *errs.Action `json:"action"`
}

func writeFormResult(c echo.Context, result form.Result) error {
	if result.IsRedirect() {
		if middleware.WantsJSON(c) {
			return c.JSON(http.StatusOK, redirectResponse{Action: errs.NewRedirectAction(result.Redirect)})
		}
		return c.Redirect(http.StatusSeeOther, result.Redirect)
	}

	return c.JSON(StatusFor(result.Kind), result.State)
}

// handleRequest is the pipeline shared by every typed endpoint: bind,
// run, log and trace, then write the response.
func handleRequest(
	c echo.Context,
	bind func(c echo.Context) error,
	handler func(c echo.Context) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("route", route).
		Logger()

	logger.Info().Msg("handling request")

	bindStart := time.Now()
	if err := bind(c); err != nil {
		bindDuration := time.Since(bindStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", bindDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", bindDuration.Milliseconds())
		}

		return err
	}

	bindDuration := time.Since(bindStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", bindDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", bindDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed JSON endpoint:
//
//	g.GET("/invoices", Handle(h.Handler, h.ListInvoices, http.StatusOK))
func Handle[Req any, PReq Validated[Req], Res any](
	h Handler,
	handler HandlerFunc[PReq, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := PReq(new(Req))

		return handleRequest(c,
			func(c echo.Context) error {
				return validation.BindAndValidate(c, req)
			},
			func(c echo.Context) (interface{}, error) {
				return handler(c, req)
			},
			JSONResponseHandler{status: status},
		)
	}
}

// HandleForm wraps a form action. The request is bound but not validated.
func HandleForm[Req any](h Handler, action FormAction[*Req]) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(Req)

		return handleRequest(c,
			func(c echo.Context) error {
				return validation.Bind(c, req)
			},
			func(c echo.Context) (interface{}, error) {
				return action(c, req)
			},
			FormResponseHandler{},
		)
	}
}
