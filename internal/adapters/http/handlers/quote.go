package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-quote/internal/app"
	"github.com/jsamuelsen/daily-quote/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// PostQuote handles POST /api/quote.
// The body selects a single date or, with acrossYears, every covered year.
//
// @Summary Get the quote for a date
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Date and mode"
// @Success 200 {object} dto.QuoteResponse
// @Success 200 {object} dto.QuotesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/quote [post]
func (h *QuoteHandler) PostQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	date, err := req.ParsedDate()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if req.AcrossYears {
		h.respondAcrossYears(c, date)
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), date)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// GetQuoteByDate handles GET /api/v1/quotes/:date.
// Unlike the POST form, a date without a quote is a 404.
//
// @Summary Get the quote for a date
// @Tags quotes
// @Produce json
// @Param date path string true "Calendar date, e.g. 2023-03-21"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{date} [get]
func (h *QuoteHandler) GetQuoteByDate(c *gin.Context) {
	date, ok := bindDate(c)
	if !ok {
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), date)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if quote == nil {
		dto.HandleError(c, domain.NewDateNotFoundError(c.Param("date")))
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// GetQuotesAcrossYears handles GET /api/v1/quotes/:date/years.
//
// @Summary Get the quotes for a month and day in every covered year
// @Tags quotes
// @Produce json
// @Param date path string true "Calendar date, e.g. 2023-03-21"
// @Success 200 {object} dto.QuotesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{date}/years [get]
func (h *QuoteHandler) GetQuotesAcrossYears(c *gin.Context) {
	date, ok := bindDate(c)
	if !ok {
		return
	}

	h.respondAcrossYears(c, date)
}

// RegisterQuoteRoutes registers the REST quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("/:date", h.GetQuoteByDate)
	quotes.GET("/:date/years", h.GetQuotesAcrossYears)
}

// RegisterLegacyRoutes registers POST /quote on the given group, normally /api.
func (h *QuoteHandler) RegisterLegacyRoutes(rg *gin.RouterGroup) {
	rg.POST("/quote", h.PostQuote)
}

func (h *QuoteHandler) respondAcrossYears(c *gin.Context, date time.Time) {
	quotes, err := h.service.GetQuotesAcrossYears(c.Request.Context(), date)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuotesResponse(quotes))
}

func bindDate(c *gin.Context) (time.Time, bool) {
	var uri dto.QuoteDateURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		respondBindError(c, err)
		return time.Time{}, false
	}

	date, err := domain.ParseDate(uri.Date)
	if err != nil {
		dto.HandleError(c, err)
		return time.Time{}, false
	}

	return date, true
}

// respondBindError writes a 400 for binding and validation failures, or a
// 413 when the body went over the server's request size limit.
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrorCodeTooLarge, "Request body too large").
			WithTraceID(dto.GetTraceID(c)))
	case errors.Is(err, dto.ErrBinding):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeBadRequest, "Request body must be a JSON object").
			WithDetail(err.Error()).
			WithTraceID(dto.GetTraceID(c)))
	case dto.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithFields(
			dto.ErrorCodeValidation,
			dto.MessageValidation,
			dto.ValidationErrors(err),
		).WithTraceID(dto.GetTraceID(c)))
	default:
		dto.HandleError(c, err)
	}
}
