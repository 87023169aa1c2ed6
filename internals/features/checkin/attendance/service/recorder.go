package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gerejaku_backend/internals/features/checkin/attendance/model"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	memberModel "gerejaku_backend/internals/features/members/model"
	occModel "gerejaku_backend/internals/features/services/occurrences/model"
	helper "gerejaku_backend/internals/helpers"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberFinder interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*memberModel.MemberModel, error)
}

type OccurrenceFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*occModel.ServiceOccurrenceModel, error)
}

// Meta: konteks request yang ikut disimpan (audit ringan).
type Meta struct {
	IP         string `json:"ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RecordedBy string `json:"recorded_by,omitempty"`
}

type ManualInput struct {
	OccurrenceID uuid.UUID
	MemberID     uuid.UUID
	Method       model.Method
	Meta         Meta
}

type PublicInput struct {
	OccurrenceID uuid.UUID
	Name         string
	Phone        string
	Category     model.Category
	Notes        string
	Method       model.Method
	Meta         Meta
}

// Recorder adalah satu-satunya penulis service_attendances.
type Recorder struct {
	DB          *gorm.DB
	Members     MemberFinder
	Occurrences OccurrenceFinder
	Roll        *RollCache
	Now         func() time.Time
}

func NewRecorder(db *gorm.DB, members MemberFinder, occurrences OccurrenceFinder, rollTTL time.Duration) *Recorder {
	r := &Recorder{DB: db, Members: members, Occurrences: occurrences, Now: time.Now}
	r.Roll = NewRollCache(rollTTL, r.countFromDB)
	return r
}

// RecordManual: check-in oleh petugas untuk jemaat terdaftar.
// Kalau jemaat sudah tercatat, record lama dikembalikan bersama ErrDuplicateCheckIn.
func (r *Recorder) RecordManual(ctx context.Context, in ManualInput) (*model.ServiceAttendanceModel, error) {
	// jalur petugas tidak melewati token, jadi tidak boleh tercatat sebagai QR
	if in.Method == "" {
		in.Method = model.MethodManual
	}
	if in.Method != model.MethodManual {
		return nil, checkinerr.ErrInvalidIdentity
	}

	if _, err := r.Occurrences.FindByID(ctx, in.OccurrenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkinerr.ErrOccurrenceNotFound
		}
		return nil, errors.Join(checkinerr.ErrPersistence, err)
	}

	member, err := r.Members.FindActiveByID(ctx, in.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkinerr.ErrMemberNotFound
		}
		return nil, errors.Join(checkinerr.ErrPersistence, err)
	}

	memberID := member.MemberID
	row := &model.ServiceAttendanceModel{
		ServiceAttendanceOccurrenceID: in.OccurrenceID,
		ServiceAttendanceMemberID:     &memberID,
		ServiceAttendanceName:         member.MemberFullName,
		ServiceAttendancePhone:        member.MemberPhone,
		ServiceAttendanceCategory:     model.CategoryMember,
		ServiceAttendanceMethod:       in.Method,
		ServiceAttendanceDedupKey:     ManualDedupKey(memberID),
	}

	rec, created, err := r.insertOnce(ctx, row, in.Meta)
	if err != nil {
		return nil, err
	}
	if !created {
		return rec, checkinerr.ErrDuplicateCheckIn
	}
	return rec, nil
}

// RecordPublic: check-in dari form QR publik. duplicate=true berarti identitas yang
// sama sudah tercatat dan record lama yang dikembalikan (bukan error).
func (r *Recorder) RecordPublic(ctx context.Context, in PublicInput) (rec *model.ServiceAttendanceModel, duplicate bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, checkinerr.ErrInvalidIdentity
	}
	if in.Category == "" {
		in.Category = model.CategoryVisitor
	}
	if !in.Category.Valid() {
		return nil, false, checkinerr.ErrInvalidIdentity
	}
	if in.Method != model.MethodQRRotating && in.Method != model.MethodQRStatic {
		return nil, false, checkinerr.ErrInvalidIdentity
	}

	key, err := PublicDedupKey(name, in.Phone)
	if err != nil {
		return nil, false, err
	}

	row := &model.ServiceAttendanceModel{
		ServiceAttendanceOccurrenceID: in.OccurrenceID,
		ServiceAttendanceName:         name,
		ServiceAttendancePhone:        optional(in.Phone),
		ServiceAttendanceCategory:     in.Category,
		ServiceAttendanceNotes:        optional(in.Notes),
		ServiceAttendanceMethod:       in.Method,
		ServiceAttendanceDedupKey:     key,
	}

	rec, created, err := r.insertOnce(ctx, row, in.Meta)
	if err != nil {
		return nil, false, err
	}
	return rec, !created, nil
}

// insertOnce: INSERT ... ON CONFLICT (occurrence, dedup_key) DO NOTHING.
// Tidak ada baris tersimpan → identitas sudah ada, muat record lamanya.
func (r *Recorder) insertOnce(ctx context.Context, row *model.ServiceAttendanceModel, meta Meta) (*model.ServiceAttendanceModel, bool, error) {
	row.ServiceAttendanceCheckedInAt = r.Now().UTC()
	if raw, err := sonic.Marshal(meta); err == nil {
		row.ServiceAttendanceMeta = datatypes.JSON(raw)
	}

	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "service_attendance_occurrence_id"},
				{Name: "service_attendance_dedup_key"},
			},
			DoNothing: true,
		}).
		Create(row)

	if res.Error != nil && !helper.IsUniqueViolation(res.Error) {
		return nil, false, errors.Join(checkinerr.ErrPersistence, res.Error)
	}
	if res.Error == nil && res.RowsAffected > 0 {
		r.Roll.Add(row.ServiceAttendanceOccurrenceID, 1)
		return row, true, nil
	}

	existing, err := r.findByKey(ctx, row.ServiceAttendanceOccurrenceID, row.ServiceAttendanceDedupKey)
	if err != nil {
		return nil, false, errors.Join(checkinerr.ErrPersistence, err)
	}
	return existing, false, nil
}

func (r *Recorder) findByKey(ctx context.Context, occurrenceID uuid.UUID, key string) (*model.ServiceAttendanceModel, error) {
	var m model.ServiceAttendanceModel
	if err := r.DB.WithContext(ctx).
		Where("service_attendance_occurrence_id = ? AND service_attendance_dedup_key = ?", occurrenceID, key).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

/* ===============================
   Read path (roll & laporan)
=================================*/

type ListFilter struct {
	Category model.Category
	Method   model.Method
	Q        string
	Offset   int
	Limit    int
}

func (r *Recorder) List(ctx context.Context, occurrenceID uuid.UUID, f ListFilter) ([]model.ServiceAttendanceModel, int64, error) {
	q := r.DB.WithContext(ctx).
		Model(&model.ServiceAttendanceModel{}).
		Where("service_attendance_occurrence_id = ?", occurrenceID)
	if f.Category != "" {
		q = q.Where("service_attendance_category = ?", f.Category)
	}
	if f.Method != "" {
		q = q.Where("service_attendance_method = ?", f.Method)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("LOWER(service_attendance_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Join(checkinerr.ErrPersistence, err)
	}

	rows := make([]model.ServiceAttendanceModel, 0)
	if err := q.Order("service_attendance_checked_in_at ASC").
		Order("service_attendance_id ASC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Join(checkinerr.ErrPersistence, err)
	}
	return rows, total, nil
}

type Summary struct {
	OccurrenceID uuid.UUID                `json:"occurrence_id"`
	Total        int64                    `json:"total"`
	ByCategory   map[model.Category]int64 `json:"by_category"`
	ByMethod     map[model.Method]int64   `json:"by_method"`
}

func (r *Recorder) Summary(ctx context.Context, occurrenceID uuid.UUID) (Summary, error) {
	out := Summary{
		OccurrenceID: occurrenceID,
		ByCategory:   map[model.Category]int64{},
		ByMethod:     map[model.Method]int64{},
	}

	var rows []struct {
		Category model.Category
		Method   model.Method
		N        int64
	}
	if err := r.DB.WithContext(ctx).
		Model(&model.ServiceAttendanceModel{}).
		Select("service_attendance_category AS category, service_attendance_method AS method, COUNT(*) AS n").
		Where("service_attendance_occurrence_id = ?", occurrenceID).
		Group("service_attendance_category, service_attendance_method").
		Scan(&rows).Error; err != nil {
		return out, errors.Join(checkinerr.ErrPersistence, err)
	}
	for _, row := range rows {
		out.Total += row.N
		out.ByCategory[row.Category] += row.N
		out.ByMethod[row.Method] += row.N
	}
	return out, nil
}

// RollCount: jumlah hadir dari cache (read-your-writes dalam proses ini).
func (r *Recorder) RollCount(ctx context.Context, occurrenceID uuid.UUID) (int64, error) {
	n, err := r.Roll.Count(ctx, occurrenceID)
	if err != nil {
		log.Printf("[CHECKIN] roll count occurrence=%s error: %v", occurrenceID, err)
		return 0, errors.Join(checkinerr.ErrPersistence, err)
	}
	return n, nil
}

func (r *Recorder) countFromDB(ctx context.Context, occurrenceID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.ServiceAttendanceModel{}).
		Where("service_attendance_occurrence_id = ?", occurrenceID).
		Count(&n).Error
	return n, err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
