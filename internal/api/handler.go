package api

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/aggregate"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/buildinfo"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/metrics"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/money"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/pipeline"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/report"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/session"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/writer"
)

// Error kinds beyond the pipeline's own.
const (
	kindNotFound   = "not_found"
	kindBadRequest = "bad_request"
	kindNoLedger   = "no_ledger"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

// SessionResponse describes a session and its last upload.
type SessionResponse struct {
	Success    bool                `json:"success"`
	ID         string              `json:"id"`
	State      session.State       `json:"state"`
	FileName   string              `json:"fileName,omitempty"`
	Format     models.SourceFormat `json:"format,omitempty"`
	FailedFile string              `json:"failedFile,omitempty"`
	Error      string              `json:"error,omitempty"`
	ErrorKind  string              `json:"errorKind,omitempty"`
	Mapping    *models.RoleMapping `json:"mapping,omitempty"`
	Report     *ledger.ParseReport `json:"report,omitempty"`
	Count      int                 `json:"count"`
}

// DashboardResponse is the dashboard view of a session's ledger.
type DashboardResponse struct {
	SessionResponse
	Dashboard     aggregate.Dashboard `json:"dashboard"`
	LifetimeTotal string              `json:"lifetimeTotal"`
	YearTotal     string              `json:"yearTotal"`
}

// Defaults are the view parameters used when a request omits them.
type Defaults struct {
	Budget decimal.Decimal
	TopN   int
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Sessions  *session.Store
	Pipeline  *pipeline.Pipeline
	Reports   *report.Builder
	Money     money.Formatter
	Defaults  Defaults
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	StaticDir string
}

// NewApp builds the fiber application with every route registered.
func (h *Handler) NewApp(bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "uft " + buildinfo.Version,
		BodyLimit:    bodyLimit,
		ErrorHandler: h.errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(h.requestLogger)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.handleHealth)
	api.Post("/sessions", h.handleCreateSession)
	api.Get("/sessions/:id", h.handleGetSession)
	api.Delete("/sessions/:id", h.handleDeleteSession)
	api.Post("/sessions/:id/upload", h.handleUpload)
	api.Get("/sessions/:id/dashboard", h.handleDashboard)
	api.Get("/sessions/:id/ledger.csv", h.handleLedgerCSV)
	api.Get("/sessions/:id/report", h.handleReport)

	app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))

	// Serve static frontend files
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
	}
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"engine":   "fiber",
		"version":  buildinfo.Version,
		"sessions": h.Sessions.Len(),
	})
}

func (h *Handler) handleCreateSession(c *fiber.Ctx) error {
	sess := h.Sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(sess))
}

func (h *Handler) handleGetSession(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(sess))
}

func (h *Handler) handleDeleteSession(c *fiber.Ctx) error {
	if _, err := h.session(c); err != nil {
		return err
	}
	h.Sessions.Delete(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) handleUpload(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, kindBadRequest, "No file uploaded. Use form field 'file'.")
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	log := h.Logger.With().Str(logger.FieldSession, sess.ID).Logger()
	ctx := logger.WithContext(c.UserContext(), log)

	res, runErr := h.Pipeline.Run(ctx, fh.Filename, data)
	if runErr != nil {
		if _, err := h.Sessions.Fail(sess.ID, fh.Filename, runErr); err != nil {
			return err
		}
		return writeError(c, statusFor(runErr), models.ErrorKind(runErr), runErr.Error())
	}

	if sess, err = h.Sessions.Succeed(sess.ID, res); err != nil {
		return err
	}
	return c.JSON(sessionResponse(sess))
}

func (h *Handler) handleDashboard(c *fiber.Ctx) error {
	sess, l, err := h.ledger(c)
	if err != nil {
		return err
	}
	if l == nil {
		// no file yet is a valid state, not an error
		return c.JSON(DashboardResponse{SessionResponse: sessionResponse(sess)})
	}

	q, err := h.query(c)
	if err != nil {
		return err
	}
	d := aggregate.BuildDashboard(l, q)
	return c.JSON(DashboardResponse{
		SessionResponse: sessionResponse(sess),
		Dashboard:       d,
		LifetimeTotal:   h.Money.Format(d.Lifetime.Total),
		YearTotal:       h.Money.Format(d.Yearly.Total),
	})
}

func (h *Handler) handleLedgerCSV(c *fiber.Ctx) error {
	sess, l, err := h.ledger(c)
	if err != nil {
		return err
	}
	if l == nil {
		return writeError(c, fiber.StatusConflict, kindNoLedger, "No statement has been uploaded to this session.")
	}

	w := &writer.CSVWriter{IncludeMetadata: c.Query("metadata") == "true"}
	c.Attachment(csvName(sess.FileName))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return w.Write(c.Response().BodyWriter(), l, writer.Metadata{
		Source: sess.FileName,
		Format: sess.Format,
		Report: sess.Report,
	})
}

func (h *Handler) handleReport(c *fiber.Ctx) error {
	_, l, err := h.ledger(c)
	if err != nil {
		return err
	}
	if l == nil {
		return writeError(c, fiber.StatusConflict, kindNoLedger, "No statement has been uploaded to this session.")
	}

	q, err := h.query(c)
	if err != nil {
		return err
	}
	rep, err := h.Reports.Build(l, q)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	c.Attachment(rep.Filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(rep.PDF)
}

// session loads the :id session or answers 404.
func (h *Handler) session(c *fiber.Ctx) (session.Session, error) {
	sess, err := h.Sessions.Get(c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return sess, writeError(c, fiber.StatusNotFound, kindNotFound, fmt.Sprintf("Unknown session %q.", c.Params("id")))
	}
	return sess, err
}

// ledger returns the session's current ledger. A failed upload with no
// earlier ledger answers with the failure; an empty session yields nil.
func (h *Handler) ledger(c *fiber.Ctx) (session.Session, *ledger.Ledger, error) {
	sess, err := h.session(c)
	if err != nil {
		return sess, nil, err
	}
	if sess.State == session.StateFailed && !sess.HasLedger() {
		return sess, nil, writeError(c, statusFor(sess.Err), models.ErrorKind(sess.Err), sess.Err.Error())
	}
	return sess, sess.Ledger, nil
}

func (h *Handler) query(c *fiber.Ctx) (aggregate.Query, error) {
	q := aggregate.Query{
		Budget: h.Defaults.Budget,
		TopN:   h.Defaults.TopN,
		Search: strings.TrimSpace(c.Query("q")),
	}

	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 0 {
			return q, writeError(c, fiber.StatusBadRequest, kindBadRequest, fmt.Sprintf("Invalid year %q.", v))
		}
		q.Year = year
	}
	if v := c.Query("budget"); v != "" {
		budget, err := decimal.NewFromString(v)
		if err != nil || budget.IsNegative() {
			return q, writeError(c, fiber.StatusBadRequest, kindBadRequest, fmt.Sprintf("Invalid budget %q.", v))
		}
		q.Budget = budget
	}
	return q, nil
}

func (h *Handler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.Logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int(logger.FieldStatus, c.Response().StatusCode()).
		Dur(logger.FieldDuration, time.Since(start)).
		Msg("request")
	return err
}

// errorHandler turns unexpected errors into the JSON error shape.
func (h *Handler) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeError(c, fe.Code, kindBadRequest, fe.Message)
	}
	if errors.Is(err, errResponded) {
		return nil
	}
	h.Logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return writeError(c, fiber.StatusInternalServerError, models.KindInternal, err.Error())
}

// errResponded marks a handler exit after an error body was written.
var errResponded = errors.New("error response written")

func writeError(c *fiber.Ctx, status int, kind, msg string) error {
	if err := c.Status(status).JSON(ErrorResponse{Success: false, Error: msg, Kind: kind}); err != nil {
		return err
	}
	return errResponded
}

func statusFor(err error) int {
	switch models.ErrorKind(err) {
	case models.KindMalformedInput, models.KindMissingColumn:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func sessionResponse(s session.Session) SessionResponse {
	resp := SessionResponse{
		Success:  true,
		ID:       s.ID,
		State:    s.State,
		FileName: s.FileName,
		Format:   s.Format,
		Count:    s.Ledger.Len(),
	}
	if s.Err != nil {
		resp.FailedFile = s.FailedFile
		resp.Error = s.Err.Error()
		resp.ErrorKind = models.ErrorKind(s.Err)
	}
	if s.HasLedger() {
		mapping, rep := s.Mapping, s.Report
		resp.Mapping = &mapping
		resp.Report = &rep
	}
	return resp
}

func csvName(source string) string {
	base := source
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "ledger"
	}
	return base + "_ledger.csv"
}
