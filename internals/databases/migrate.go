package database

import (
	"log"

	attendanceModel "gerejaku_backend/internals/features/checkin/attendance/model"
	tokenModel "gerejaku_backend/internals/features/checkin/tokens/model"
	memberModel "gerejaku_backend/internals/features/members/model"
	occurrenceModel "gerejaku_backend/internals/features/services/occurrences/model"

	"gorm.io/gorm"
)

// Models yang dimiliki modul check-in. Tabel members dikelola CRUD anggota,
// di sini hanya ikut dimigrasi supaya environment dev/test lengkap.
func Models() []any {
	return []any{
		&memberModel.MemberModel{},
		&occurrenceModel.ServiceOccurrenceModel{},
		&tokenModel.CheckinTokenModel{},
		&attendanceModel.ServiceAttendanceModel{},
	}
}

func Migrate(db *gorm.DB) error {
	log.Println("[INFO] AutoMigrate check-in models...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("[INFO] AutoMigrate selesai")
	return nil
}
