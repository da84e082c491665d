package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type VoucherHandler struct {
	db        *gorm.DB
	vouchers  *services.VoucherService
	cache     *services.RedisCache
	mediaRoot string
}

func NewVoucherHandler(db *gorm.DB, cache *services.RedisCache) *VoucherHandler {
	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "media"
	}
	return &VoucherHandler{
		db:        db,
		vouchers:  services.NewVoucherService(db),
		cache:     cache,
		mediaRoot: mediaRoot,
	}
}

// actor resolves who is performing the request for the audit trail
func actor(c echo.Context) string {
	if name := getStringFromContext(c, "userName"); name != "" {
		return name
	}
	if email := getStringFromContext(c, "userEmail"); email != "" {
		return email
	}
	return "system"
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *VoucherHandler) CreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.vouchers.CreateCategory(req.Name, actor(c), c.RealIP())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *VoucherHandler) ListCategories(c echo.Context) error {
	var categories []models.VoucherCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// UploadFile accepts a multipart voucher batch file (txt or xlsx), stores it
// under the media root with a random name and records it awaiting population.
func (h *VoucherHandler) UploadFile(c echo.Context) error {
	categoryID, err := pathID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".txt" && ext != ".csv" && ext != ".xlsx" {
		return echo.NewHTTPError(http.StatusBadRequest, "file must be .txt, .csv or .xlsx")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dir := filepath.Join(h.mediaRoot, "vouchers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	storedPath := filepath.Join(dir, uuid.New().String()+ext)
	dst, err := os.Create(storedPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	file, err := h.vouchers.CreateFile(fileHeader.Filename, storedPath, categoryID, actor(c), c.RealIP())
	if err != nil {
		os.Remove(storedPath)
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, file)
}

func (h *VoucherHandler) ListFiles(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.VoucherFile{}).Preload("Category")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var files []models.VoucherFile
	if err := query.Order("created_at desc").Limit(defaultPageSize).Offset(offset).Find(&files).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(files, page, total))
}

// PopulateFile imports a batch file's rows into the voucher inventory
func (h *VoucherHandler) PopulateFile(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	created, err := h.vouchers.ImportBatch(id, actor(c), c.RealIP())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "File populated successfully",
		"vouchers_created": created,
	})
}

func (h *VoucherHandler) ListVouchers(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.Voucher{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if fileID := c.QueryParam("file_id"); fileID != "" {
		query = query.Where("file_id = ?", fileID)
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Joins("JOIN voucher_files ON voucher_files.id = vouchers.file_id").
			Where("voucher_files.category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var vouchers []models.Voucher
	if err := query.Order("vouchers.id asc").Limit(defaultPageSize).Offset(offset).Find(&vouchers).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(vouchers, page, total))
}

func (h *VoucherHandler) GetVoucher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var voucher models.Voucher
	if err := h.db.Preload("VoucherUser").First(&voucher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, voucher)
}

type markVoucherRequest struct {
	Status string `json:"status" validate:"required,oneof=printed used"`
}

func (h *VoucherHandler) MarkVoucher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req markVoucherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	voucher, err := h.vouchers.MarkStatus(id, models.VoucherStatus(req.Status), actor(c), c.RealIP())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, voucher)
}

type assignUserRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phonenumber"`
	Email       string `json:"email" validate:"omitempty,email"`
	DeviceMAC   string `json:"device_mac"`
}

func (h *VoucherHandler) AssignUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req assignUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.vouchers.AssignUser(id, req.Name, req.PhoneNumber, req.Email, req.DeviceMAC, actor(c), c.RealIP())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *VoucherHandler) ListLogs(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.VoucherLog{})
	if actionType := c.QueryParam("action_type"); actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}
	if voucherID := c.QueryParam("voucher_id"); voucherID != "" {
		query = query.Where("voucher_id = ?", voucherID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var logs []models.VoucherLog
	if err := query.Order("created_at desc").Limit(defaultPageSize).Offset(offset).Find(&logs).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(logs, page, total))
}

type voucherStatusResponse struct {
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Active     bool       `json:"active"`
	ExpiryTime *time.Time `json:"expiry_time"`
}

// VoucherStatus is the public unauthenticated status check customers use to
// see whether their code is still live. Responses are cached briefly.
func (h *VoucherHandler) VoucherStatus(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	resp, err := services.GetOrSet(h.cache, c.Request().Context(), "voucher_status:"+code, 30*time.Second,
		func() (voucherStatusResponse, error) {
			var voucher models.Voucher
			if err := h.db.Where("code = ?", code).First(&voucher).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return voucherStatusResponse{}, services.ErrNotFound
				}
				return voucherStatusResponse{}, err
			}
			return voucherStatusResponse{
				Code:       voucher.Code,
				Status:     string(voucher.Status),
				Active:     voucher.Active,
				ExpiryTime: voucher.ExpiryTime,
			}, nil
		})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
