package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wastelookup/internal/collection"
	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/exporter"
	"wastelookup/internal/middleware"
)

// CollectionService is the part of services.CollectionService the handler uses.
type CollectionService interface {
	Lookup(ctx context.Context, chip string) (*collection.Match, error)
	Query(ctx context.Context, in collection.QueryInput) (*collection.Result, error)
	DefaultRate() *float64
}

type chipKey struct{}

// maxChipLength bounds the path parameter before it reaches the service.
const maxChipLength = 64

// CollectionHandler answers chip lookups.
type CollectionHandler struct {
	service      CollectionService
	validator    *middleware.Validator
	exporter     *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCollectionHandler creates a collection handler.
func NewCollectionHandler(service CollectionService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CollectionHandler {
	return &CollectionHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		exporter:     exporter.NewCSVWriter(logger),
		logger:       logger.With(slog.String("component", "collection_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the collection routes.
func (h *CollectionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{chip}", func(r chi.Router) {
		r.Use(h.ChipCtx)
		r.Get("/", h.GetCollection)
		r.Get("/span", h.GetSpan)
		r.Get("/export.csv", h.ExportCSV)
	})
	return r
}

// ChipCtx decodes and bounds the chip path parameter.
func (h *CollectionHandler) ChipCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "chip")
		chip, err := url.PathUnescape(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("chip", "chip is not a valid path segment"))
			return
		}
		if len(chip) > maxChipLength {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("chip", "chip must be at most 64 characters"))
			return
		}
		ctx := context.WithValue(r.Context(), chipKey{}, chip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func chipFrom(ctx context.Context) string {
	chip, _ := ctx.Value(chipKey{}).(string)
	return chip
}

// queryParams are the query string parameters of a collection query.
type queryParams struct {
	From     string `query:"from" validate:"day"`
	To       string `query:"to" validate:"day"`
	Rate     string `query:"rate" validate:"omitempty,numeric"`
	Estimate string `query:"estimate" validate:"omitempty,boolean"`
	Sep      string `query:"sep" validate:"omitempty,oneof=comma semicolon"`
}

func parseQueryParams(r *http.Request) queryParams {
	q := r.URL.Query()
	return queryParams{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Rate:     q.Get("rate"),
		Estimate: q.Get("estimate"),
		Sep:      q.Get("sep"),
	}
}

// queryInput validates the request and builds the service input. An
// explicit rate wins over estimate=true, which uses the configured price.
func (h *CollectionHandler) queryInput(r *http.Request) (collection.QueryInput, error) {
	p := parseQueryParams(r)
	if err := h.validator.ValidateStruct(p); err != nil {
		return collection.QueryInput{}, err
	}

	in := collection.QueryInput{ChipID: chipFrom(r.Context())}
	if p.From != "" {
		in.From, _ = collection.ParseDay(p.From)
	}
	if p.To != "" {
		in.To, _ = collection.ParseDay(p.To)
	}

	switch {
	case p.Rate != "":
		rate, err := strconv.ParseFloat(p.Rate, 64)
		if err != nil || rate < 0 {
			return collection.QueryInput{}, apierrors.ErrValidation("rate", "rate must be a non-negative number")
		}
		in.Rate = &rate
	case p.Estimate != "":
		if on, _ := strconv.ParseBool(p.Estimate); on {
			in.Rate = h.service.DefaultRate()
		}
	}
	return in, nil
}

// GetCollection handles GET /api/collections/{chip}
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	in, err := h.queryInput(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Query(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "collection query served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("chip", res.ChipID),
		slog.Int("pickups", res.PickupCount))
	render.JSON(w, r, NewResultResponse(res))
}

// GetSpan handles GET /api/collections/{chip}/span
func (h *CollectionHandler) GetSpan(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Lookup(r.Context(), chipFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, SpanResponse{
		ChipID:    m.ChipID,
		Records:   len(m.Records),
		Available: newDateSpan(m.Span),
	})
}

// ExportCSV handles GET /api/collections/{chip}/export.csv. sep=semicolon
// switches to the regional spreadsheet format with decimal commas.
func (h *CollectionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	in, err := h.queryInput(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	res, err := h.service.Query(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts := exporter.DefaultWriteOptions()
	if r.URL.Query().Get("sep") == "semicolon" {
		opts.Comma = ';'
		opts.DecimalComma = true
	}

	w.Header().Set("Content-Type", exporter.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename(res)+`"`)
	if err := h.exporter.WriteListing(w, res, opts); err != nil {
		// Headers are gone; all that is left is to log.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("chip", res.ChipID),
			slog.String("error", err.Error()))
	}
}

// DateSpan is an inclusive date range in YYYY-MM-DD form.
type DateSpan struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newDateSpan(s collection.Span) *DateSpan {
	if s.IsZero() {
		return nil
	}
	return &DateSpan{From: formatDay(s.From), To: formatDay(s.To)}
}

func formatDay(t time.Time) string {
	return t.Format(collection.DateLayout)
}

// SpanResponse is the body of GET /collections/{chip}/span.
type SpanResponse struct {
	ChipID    string    `json:"chip_id"`
	Records   int       `json:"records"`
	Available *DateSpan `json:"available,omitempty"`
}

// RecordResponse is one pickup.
type RecordResponse struct {
	Date   string   `json:"date"`
	MassKg *float64 `json:"mass_kg"`
	Row    int      `json:"row,omitempty"`
}

// ResultResponse is the body of GET /collections/{chip}.
type ResultResponse struct {
	ChipID          string           `json:"chip_id"`
	From            string           `json:"from"`
	To              string           `json:"to"`
	Available       *DateSpan        `json:"available,omitempty"`
	PickupCount     int              `json:"pickup_count"`
	TotalMassKg     float64          `json:"total_mass_kg"`
	MissingMass     int              `json:"missing_mass"`
	Rate            *float64         `json:"rate,omitempty"`
	EstimatedAmount *float64         `json:"estimated_amount,omitempty"`
	Records         []RecordResponse `json:"records"`
}

// NewResultResponse converts a query result for rendering.
func NewResultResponse(res *collection.Result) ResultResponse {
	out := ResultResponse{
		ChipID:          res.ChipID,
		From:            formatDay(res.From),
		To:              formatDay(res.To),
		Available:       newDateSpan(res.Available),
		PickupCount:     res.PickupCount,
		TotalMassKg:     res.TotalMassKg,
		MissingMass:     res.MissingMass,
		Rate:            res.Rate,
		EstimatedAmount: res.EstimatedAmount,
		Records:         make([]RecordResponse, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		out.Records = append(out.Records, RecordResponse{
			Date:   formatDay(rec.Date),
			MassKg: rec.MassKg,
			Row:    rec.Row,
		})
	}
	return out
}
