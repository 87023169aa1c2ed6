// Package testutil: helper bersama untuk test (DB sqlite in-memory, jam palsu, seed data).
package testutil

import (
	"fmt"
	"testing"
	"time"

	database "gerejaku_backend/internals/databases"
	memberModel "gerejaku_backend/internals/features/members/model"
	occurrenceModel "gerejaku_backend/internals/features/services/occurrences/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB membuka sqlite in-memory yang terisolasi per test, sudah dimigrasi.
// Satu koneksi saja supaya akses paralel di test ter-serialisasi oleh pool.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

// SeedOccurrence membuat jadwal ibadah [startsAt, startsAt+duration).
func SeedOccurrence(t testing.TB, db *gorm.DB, startsAt time.Time, duration time.Duration) occurrenceModel.ServiceOccurrenceModel {
	t.Helper()
	occ := occurrenceModel.ServiceOccurrenceModel{
		ServiceOccurrenceTitle:    "Ibadah Minggu Pagi",
		ServiceOccurrenceStartsAt: startsAt.UTC(),
		ServiceOccurrenceEndsAt:   startsAt.Add(duration).UTC(),
	}
	if err := db.Create(&occ).Error; err != nil {
		t.Fatalf("Failed to seed occurrence: %v", err)
	}
	return occ
}

func SeedMember(t testing.TB, db *gorm.DB, name, phone string) memberModel.MemberModel {
	t.Helper()
	m := memberModel.MemberModel{
		MemberFullName: name,
		MemberIsActive: true,
	}
	if phone != "" {
		m.MemberPhone = &phone
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("Failed to seed member: %v", err)
	}
	return m
}
