package services

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"workhub_app/internal/models"
)

// Voucher batch text files carry a fixed header region before the codes start
const batchFileHeaderLines = 7

// VoucherService owns the voucher inventory: bulk import from batch files,
// status transitions, end-user assignment and the audit trail.
type VoucherService struct {
	db *gorm.DB
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// AppendLog writes one append-only audit trail entry
func AppendLog(tx *gorm.DB, actor, action string, actionType models.VoucherLogAction, voucherID *uint, ip string) error {
	return tx.Create(&models.VoucherLog{
		Actor:      actor,
		Action:     action,
		ActionType: actionType,
		VoucherID:  voucherID,
		IPAddress:  ip,
	}).Error
}

// CreateCategory adds a voucher category, rejecting duplicate names
func (s *VoucherService) CreateCategory(name, actor, ip string) (*models.VoucherCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "category name is required"}
	}

	var count int64
	if err := s.db.Model(&models.VoucherCategory{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "Category with this name already exists"}
	}

	category := models.VoucherCategory{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return AppendLog(tx, actor, fmt.Sprintf("%s created category %s", actor, name), models.VoucherLogCreate, nil, ip)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateFile records an uploaded batch file awaiting population
func (s *VoucherService) CreateFile(name, path string, categoryID uint, actor, ip string) (*models.VoucherFile, error) {
	var category models.VoucherCategory
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	file := models.VoucherFile{
		Name:       name,
		FilePath:   path,
		CategoryID: categoryID,
		UploadedBy: actor,
		Status:     models.VoucherFileNotPopulated,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return AppendLog(tx, actor, fmt.Sprintf("%s created file %s", actor, name), models.VoucherLogCreate, nil, ip)
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ImportBatch parses a batch file into voucher rows. A file populates
// exactly once; re-running is a conflict with no changes. Codes already in
// inventory are skipped. Returns the number of vouchers created.
func (s *VoucherService) ImportBatch(fileID uint, actor, ip string) (int, error) {
	var file models.VoucherFile
	if err := s.db.First(&file, fileID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if file.Status != models.VoucherFileNotPopulated {
		return 0, &ConflictError{Message: "File is already populated"}
	}

	rows, err := readBatchRows(file.FilePath)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var count int64
			if err := tx.Model(&models.Voucher{}).Where("code = ?", row.code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			voucher := models.Voucher{
				Code:             row.code,
				Username:         row.username,
				Password:         row.password,
				FileID:           file.ID,
				Status:           models.VoucherStatusUnused,
				ValidityDuration: 24,
			}
			if err := tx.Create(&voucher).Error; err != nil {
				return err
			}
			created++
		}

		if err := tx.Model(&file).Update("status", models.VoucherFilePopulated).Error; err != nil {
			return err
		}

		return AppendLog(tx, actor,
			fmt.Sprintf("%s populated %d vouchers from %s", actor, created, file.Name),
			models.VoucherLogPopulate, nil, ip)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Populated %d vouchers from file %s", created, file.Name)
	return created, nil
}

type batchRow struct {
	code     string
	username string
	password string
}

// readBatchRows extracts voucher rows from a batch file. Excel workbooks are
// read row by row; text files skip the fixed header region. A row is either
// "code" alone (the code doubles as the portal credentials) or
// "code,username,password".
func readBatchRows(path string) ([]batchRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readExcelRows(path)
	}
	return readTextRows(path)
}

func readTextRows(path string) ([]batchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var rows []batchRow
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= batchFileHeaderLines {
			continue
		}
		if row, ok := parseBatchLine(scanner.Text()); ok {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func readExcelRows(path string) ([]batchRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var rows []batchRow
	for i, cols := range cells {
		// First row is a header
		if i == 0 {
			continue
		}
		if row, ok := parseBatchLine(strings.Join(cols, ",")); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func parseBatchLine(line string) (batchRow, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return batchRow{}, false
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '\t' || r == ' '
	})
	var parts []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return batchRow{}, false
	}

	row := batchRow{code: parts[0], username: parts[0], password: parts[0]}
	if len(parts) >= 3 {
		row.username = parts[1]
		row.password = parts[2]
	}
	return row, true
}

// Deactivate flips a voucher inactive once its expiry has passed. It is the
// at-least-once task body: already-inactive vouchers, vouchers whose expiry
// was pushed out after scheduling, and duplicate runs are all no-ops.
func (s *VoucherService) Deactivate(voucherID uint, now time.Time) (bool, error) {
	var voucher models.Voucher
	if err := s.db.First(&voucher, voucherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, ErrNotFound
		}
		return false, err
	}

	if !voucher.Active || voucher.ExpiryTime == nil || now.Before(*voucher.ExpiryTime) {
		return false, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&voucher).Update("active", false).Error; err != nil {
			return err
		}
		return AppendLog(tx, "system",
			fmt.Sprintf("Voucher %s deactivated at expiry", voucher.Code),
			models.VoucherLogExpire, &voucher.ID, "")
	})
	if err != nil {
		return false, err
	}

	log.Printf("Voucher %s deactivated", voucher.Code)
	return true, nil
}

// AssignUser binds an end customer to a sold voucher (1:1)
func (s *VoucherService) AssignUser(voucherID uint, name, phone, email, deviceMAC, actor, ip string) (*models.VoucherUser, error) {
	var voucher models.Voucher
	if err := s.db.First(&voucher, voucherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.VoucherUser{}).Where("voucher_id = ?", voucherID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "This voucher already has a user assigned"}
	}

	user := models.VoucherUser{
		VoucherID:   voucher.ID,
		VoucherCode: voucher.Code,
		Name:        name,
		PhoneNumber: phone,
		Email:       email,
		DeviceMAC:   deviceMAC,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return AppendLog(tx, actor,
			fmt.Sprintf("%s assigned voucher %s to %s", actor, voucher.Code, name),
			models.VoucherLogCreate, &voucher.ID, ip)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkStatus stamps a voucher printed or used, with the matching audit entry
func (s *VoucherService) MarkStatus(voucherID uint, status models.VoucherStatus, actor, ip string) (*models.Voucher, error) {
	if status != models.VoucherStatusPrinted && status != models.VoucherStatusUsed {
		return nil, &ValidationError{Message: "status must be printed or used"}
	}

	var voucher models.Voucher
	if err := s.db.First(&voucher, voucherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	actionType := models.VoucherLogUse
	if status == models.VoucherStatusPrinted {
		actionType = models.VoucherLogPrint
		if voucher.DatePrinted == nil {
			updates["date_printed"] = &now
		}
	} else if voucher.DateUsed == nil {
		updates["date_used"] = &now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&voucher).Updates(updates).Error; err != nil {
			return err
		}
		return AppendLog(tx, actor,
			fmt.Sprintf("%s marked voucher %s as %s", actor, voucher.Code, status),
			actionType, &voucher.ID, ip)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&voucher, voucherID).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}
