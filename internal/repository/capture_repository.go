package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/domain/capture"
)

const maxCapturePage = 1000

type CaptureRepository struct {
	db *gorm.DB
}

func NewCaptureRepository(db *gorm.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

type Plate struct {
	ID         int64  `gorm:"primaryKey"`
	Number     string `gorm:"not null"`
	Normalized string `gorm:"not null;uniqueIndex"`
	CreatedAt  time.Time
}

type CaptureEntryRow struct {
	ID            int64 `gorm:"primaryKey"`
	PlateID       *int64
	SourceID      string `gorm:"not null"`
	SourceModel   *string
	RawPlate      string `gorm:"not null"`
	VehicleRef    string `gorm:"not null"`
	Confidence    *float64
	LocationID    uuid.UUID `gorm:"type:uuid;not null"`
	EntryTime     time.Time `gorm:"not null"`
	ExitTime      *time.Time
	EntryImageRef *string
	ExitImageRef  *string
	RawPayload    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

func (CaptureEntryRow) TableName() string {
	return "auto_capture_entries"
}

func (r *CaptureRepository) GetOrCreatePlate(ctx context.Context, normalized, original string) (int64, error) {
	var plate Plate
	err := r.db.WithContext(ctx).Where("normalized = ?", normalized).First(&plate).Error
	if err == nil {
		return plate.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, classify("get_plate", err)
	}

	plate = Plate{
		Number:     original,
		Normalized: normalized,
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&plate).Error; err != nil {
		return 0, classify("create_plate", err)
	}
	return plate.ID, nil
}

type NewEntry struct {
	PlateID  int64
	Payload  capture.EventPayload
	Vehicle  string
	ImageRef string
	// Closed stores an exit read that had no open entry as a zero-length visit.
	Closed bool
}

func (r *CaptureRepository) CreateEntry(ctx context.Context, in NewEntry) (*capture.Entry, error) {
	p := in.Payload
	row := CaptureEntryRow{
		PlateID:    &in.PlateID,
		SourceID:   p.SourceID,
		RawPlate:   p.Plate,
		VehicleRef: in.Vehicle,
		LocationID: p.LocationID,
		EntryTime:  p.EventTime,
		CreatedAt:  time.Now(),
	}
	if p.SourceModel != "" {
		row.SourceModel = &p.SourceModel
	}
	if p.Confidence != 0 {
		row.Confidence = &p.Confidence
	}
	if in.ImageRef != "" {
		row.EntryImageRef = &in.ImageRef
	}
	if in.Closed {
		exit := p.EventTime
		row.ExitTime = &exit
		row.ExitImageRef = row.EntryImageRef
	}
	if len(p.RawPayload) > 0 {
		row.RawPayload = datatypes.JSONMap(p.RawPayload)
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, classify("create_capture_entry", err)
	}
	e := row.toDomain()
	return &e, nil
}

// CloseOpenEntry stamps the exit on the latest entry of the vehicle at the
// location that has none yet. It reports false when no open entry exists.
func (r *CaptureRepository) CloseOpenEntry(ctx context.Context, locationID uuid.UUID, vehicleRef string, exitTime time.Time, imageRef string) (*capture.Entry, bool, error) {
	var row CaptureEntryRow
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND vehicle_ref = ? AND exit_time IS NULL AND entry_time <= ?", locationID, vehicleRef, exitTime).
		Order("entry_time DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify("find_open_capture_entry", err)
	}

	updates := map[string]interface{}{"exit_time": exitTime}
	if imageRef != "" {
		updates["exit_image_ref"] = imageRef
	}
	if err := r.db.WithContext(ctx).Model(&CaptureEntryRow{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		return nil, false, classify("close_capture_entry", err)
	}
	row.ExitTime = &exitTime
	if imageRef != "" {
		row.ExitImageRef = &imageRef
	}
	e := row.toDomain()
	return &e, true, nil
}

func (r *CaptureRepository) QueryAutoCaptureEntries(ctx context.Context, f capture.Filter) ([]capture.Entry, error) {
	query := r.db.WithContext(ctx).Model(&CaptureEntryRow{})

	if f.LocationID != nil {
		query = query.Where("location_id = ?", *f.LocationID)
	}
	if f.VehicleRef != "" {
		query = query.Where("vehicle_ref = ?", f.VehicleRef)
	}
	if f.From != nil {
		query = query.Where("entry_time >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("entry_time <= ?", *f.To)
	}

	query = query.Order("entry_time DESC")

	limit := f.Limit
	if limit <= 0 || limit > maxCapturePage {
		limit = maxCapturePage
	}
	query = query.Limit(limit)
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var rows []CaptureEntryRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, classify("query_capture_entries", err)
	}
	out := make([]capture.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CaptureRepository) FindPlatesByNormalized(ctx context.Context, normalized string) ([]Plate, error) {
	var plates []Plate
	err := r.db.WithContext(ctx).
		Where("normalized LIKE ?", "%"+normalized+"%").
		Order("normalized ASC").
		Limit(50).
		Find(&plates).Error
	if err != nil {
		return nil, classify("find_plates", err)
	}
	return plates, nil
}

func (r *CaptureRepository) GetLastEntryTimeForPlate(ctx context.Context, plateID int64) (*time.Time, error) {
	var row CaptureEntryRow
	err := r.db.WithContext(ctx).
		Where("plate_id = ?", plateID).
		Order("entry_time DESC").
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("last_capture_entry", err)
	}
	return &row.EntryTime, nil
}

// ActiveLocations lists the locations with captures entered in [from, to).
func (r *CaptureRepository) ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&CaptureEntryRow{}).
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Distinct().
		Pluck("location_id", &ids).Error
	if err != nil {
		return nil, classify("capture_locations", err)
	}
	return ids, nil
}

// DeleteOldEntries removes captures older than days.
func (r *CaptureRepository) DeleteOldEntries(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res := r.db.WithContext(ctx).Where("entry_time < ?", cutoff).Delete(&CaptureEntryRow{})
	if res.Error != nil {
		return 0, classify("delete_old_capture_entries", res.Error)
	}
	return res.RowsAffected, nil
}

func (row CaptureEntryRow) toDomain() capture.Entry {
	return capture.Entry{
		ID:            row.ID,
		VehicleRef:    row.VehicleRef,
		EntryTime:     row.EntryTime,
		ExitTime:      row.ExitTime,
		EntryImageRef: deref(row.EntryImageRef),
		ExitImageRef:  deref(row.ExitImageRef),
		LocationID:    row.LocationID,
		CreatedAt:     row.CreatedAt,
	}
}
