package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"workhub_app/internal/services"
)

// Lists paginate 20 items per page
const defaultPageSize = 20

// RequestValidator adapts go-playground/validator to echo's Validator
// interface; handlers call c.Validate on bound request structs.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// serviceError maps service-layer errors onto the HTTP taxonomy: not-found
// to 404, conflicts and rejected input to 400, everything else bubbles up
// as a 500 with the raw message.
func serviceError(err error) error {
	var conflict *services.ConflictError
	var invalid *services.ValidationError

	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusBadRequest, conflict.Message)
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Message)
	default:
		return err
	}
}

// pageParams parses the page query parameter and returns (page, offset)
func pageParams(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	return page, (page - 1) * defaultPageSize
}

// paginatedResponse is the common list envelope
type paginatedResponse struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
	HasMore  bool        `json:"has_more"`
}

func paginate(items interface{}, page int, total int64) paginatedResponse {
	return paginatedResponse{
		Items:    items,
		Page:     page,
		PageSize: defaultPageSize,
		Total:    total,
		HasMore:  total > int64(page*defaultPageSize),
	}
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}
