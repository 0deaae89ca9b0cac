// Package storage persists scan sessions and their findings in SQLite.
package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/digimosa/pii-scanner/internal/models"
	"github.com/digimosa/pii-scanner/internal/stats"
)

// Scan statuses.
const (
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

const findingBatchSize = 500

// ErrNotFound is returned when a scan id is unknown.
var ErrNotFound = errors.New("scan not found")

type ScanModel struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	RootPath      string         `json:"root_path"`
	Profile       string         `json:"profile"`
	Status        string         `json:"status"`
	Error         string         `json:"error,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Duration      time.Duration  `json:"duration"`
	TotalFiles    int64          `json:"total_files"`
	PIIFiles      int64          `json:"pii_files"`
	TotalFindings int64          `json:"total_findings"`
	Findings      []FindingModel `gorm:"foreignKey:ScanID" json:"findings,omitempty"`
}

type FindingModel struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ScanID               string     `gorm:"index" json:"scan_id"`
	FilePath             string     `json:"file_path"`
	PiiType              string     `gorm:"index" json:"pii_type"`
	Match                string     `json:"match"`
	LastAccessedDate     *time.Time `json:"last_accessed_date,omitempty"`
	ExposureLevel        string     `json:"exposure_level,omitempty"`
	AccessibleToEveryone *bool      `json:"accessible_to_everyone,omitempty"`
	IsNetworkShare       *bool      `json:"is_network_share,omitempty"`
	UserGroupCount       *int       `json:"user_group_count,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Finding converts a stored row back into a detector finding.
func (m FindingModel) Finding() models.Finding {
	return models.Finding{
		FilePath:             m.FilePath,
		PiiType:              m.PiiType,
		Match:                m.Match,
		LastAccessedDate:     m.LastAccessedDate,
		ExposureLevel:        m.ExposureLevel,
		AccessibleToEveryone: m.AccessibleToEveryone,
		IsNetworkShare:       m.IsNetworkShare,
		UserGroupCount:       m.UserGroupCount,
	}
}

// Store wraps a gorm connection.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&ScanModel{}, &FindingModel{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateScan(id, rootPath, profile string) (*ScanModel, error) {
	scan := &ScanModel{
		ID:        id,
		RootPath:  rootPath,
		Profile:   profile,
		Status:    StatusRunning,
		StartTime: s.now(),
	}
	if err := s.db.Create(scan).Error; err != nil {
		return nil, fmt.Errorf("create scan: %w", err)
	}
	return scan, nil
}

// CompleteScan marks a scan finished and records its totals.
func (s *Store) CompleteScan(id string, st stats.Statistics) error {
	scan, err := s.scan(id)
	if err != nil {
		return err
	}
	end := s.now()
	return s.db.Model(scan).Select("EndTime", "Duration", "Status", "TotalFiles", "PIIFiles", "TotalFindings").Updates(ScanModel{
		EndTime:       end,
		Duration:      end.Sub(scan.StartTime),
		Status:        StatusCompleted,
		TotalFiles:    int64(st.TotalFilesScanned),
		PIIFiles:      int64(st.FilesWithPii),
		TotalFindings: int64(st.TotalPiiFound),
	}).Error
}

// FailScan marks a scan failed with msg.
func (s *Store) FailScan(id, msg string) error {
	scan, err := s.scan(id)
	if err != nil {
		return err
	}
	end := s.now()
	return s.db.Model(scan).Select("EndTime", "Duration", "Status", "Error").Updates(ScanModel{
		EndTime:  end,
		Duration: end.Sub(scan.StartTime),
		Status:   StatusFailed,
		Error:    msg,
	}).Error
}

// SaveFindings inserts findings for a scan in batches.
func (s *Store) SaveFindings(id string, findings []models.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]FindingModel, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, FindingModel{
			ScanID:               id,
			FilePath:             f.FilePath,
			PiiType:              f.PiiType,
			Match:                f.Match,
			LastAccessedDate:     f.LastAccessedDate,
			ExposureLevel:        f.ExposureLevel,
			AccessibleToEveryone: f.AccessibleToEveryone,
			IsNetworkShare:       f.IsNetworkShare,
			UserGroupCount:       f.UserGroupCount,
			CreatedAt:            now,
		})
	}
	if err := s.db.CreateInBatches(rows, findingBatchSize).Error; err != nil {
		return fmt.Errorf("save findings: %w", err)
	}
	return nil
}

// ListScans returns all scans, newest first, without findings.
func (s *Store) ListScans() ([]ScanModel, error) {
	var scans []ScanModel
	err := s.db.Order("start_time desc").Find(&scans).Error
	return scans, err
}

// GetScan returns one scan with its findings.
func (s *Store) GetScan(id string) (*ScanModel, error) {
	var scan ScanModel
	err := s.db.Preload("Findings").First(&scan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// DeleteScan removes a scan and its findings.
func (s *Store) DeleteScan(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scan_id = ?", id).Delete(&FindingModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&ScanModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

func (s *Store) scan(id string) (*ScanModel, error) {
	var scan ScanModel
	err := s.db.First(&scan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &scan, err
}
