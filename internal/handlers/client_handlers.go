package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type createClientRequest struct {
	Name        string  `json:"name" validate:"required"`
	PhoneNumber string  `json:"phonenumber" validate:"required"`
	Email       string  `json:"email" validate:"omitempty,email"`
	ClientType  string  `json:"client_type" validate:"omitempty,oneof=casual permanent"`
	MonthlyFee  float64 `json:"monthly_fee" validate:"gte=0"`
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	clientType := models.ClientTypeCasual
	if req.ClientType != "" {
		clientType = models.ClientType(req.ClientType)
	}

	var count int64
	if err := h.db.Model(&models.Client{}).Where("phone_number = ?", req.PhoneNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "A client with this phone number already exists")
	}

	client := models.Client{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		ClientType:  clientType,
		MonthlyFee:  req.MonthlyFee,
		IsActive:    true,
	}
	if clientType == models.ClientTypePermanent {
		now := time.Now()
		client.MembershipStartDate = &now
	}

	if err := h.db.Create(&client).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) ListClients(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.Client{})
	if clientType := c.QueryParam("client_type"); clientType != "" {
		query = query.Where("client_type = ?", clientType)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR phone_number LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var clients []models.Client
	if err := query.Order("name asc").Limit(defaultPageSize).Offset(offset).Find(&clients).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(clients, page, total))
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, client)
}

type updateClientRequest struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	ClientType *string  `json:"client_type" validate:"omitempty,oneof=casual permanent"`
	MonthlyFee *float64 `json:"monthly_fee" validate:"omitempty,gte=0"`
	IsActive   *bool    `json:"is_active"`
}

// UpdateClient applies a partial update. Promoting a casual client to
// permanent stamps the membership start date; deactivating a permanent
// client stamps the end date.
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}

	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.ClientType != nil {
		newType := models.ClientType(*req.ClientType)
		updates["client_type"] = newType
		if newType == models.ClientTypePermanent && client.ClientType != models.ClientTypePermanent {
			updates["membership_start_date"] = &now
			updates["membership_end_date"] = nil
		}
	}
	if req.MonthlyFee != nil {
		updates["monthly_fee"] = *req.MonthlyFee
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
		if !*req.IsActive && client.ClientType == models.ClientTypePermanent && client.MembershipEndDate == nil {
			updates["membership_end_date"] = &now
		}
	}

	if len(updates) > 0 {
		if err := h.db.Model(&client).Updates(updates).Error; err != nil {
			return err
		}
	}

	if err := h.db.First(&client, id).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// ClientPaymentHistory lists a client's monthly payment records newest first
func (h *ClientHandler) ClientPaymentHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var count int64
	if err := h.db.Model(&models.Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return serviceError(services.ErrNotFound)
	}

	var payments []models.MonthlyPayment
	if err := h.db.Where("client_id = ?", id).Order("payment_month desc").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// ClientPendingPayments lists a client's unsettled records (pending or overdue)
func (h *ClientHandler) ClientPendingPayments(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var count int64
	if err := h.db.Model(&models.Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return serviceError(services.ErrNotFound)
	}

	var payments []models.MonthlyPayment
	if err := h.db.Where("client_id = ? AND status IN ?", id,
		[]models.MonthlyPaymentStatus{models.MonthlyPaymentPending, models.MonthlyPaymentOverdue}).
		Order("payment_month asc").Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}
