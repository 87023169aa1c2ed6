package configs

import (
	"fmt"
	"strings"
	"time"

	"gerejaku_backend/internals/constants"
)

const (
	TokenStorePostgres = "postgres"
	TokenStoreMemory   = "memory"
)

// Batas byte acak token QR. 93 byte = 124 karakter base64url, pas dengan
// kolom varchar(128) bersama prefix "rt_"/"st_".
const (
	MinTokenBytes = 16
	MaxTokenBytes = 93
)

// CheckinConfig mengatur siklus token QR dan endpoint check-in publik.
type CheckinConfig struct {
	// Interval polling layar QR. Token rotating hidup PollInterval + RotationGrace.
	TokenPollInterval time.Duration
	RotationGrace     time.Duration
	StaticTTL         time.Duration
	TokenBytes        int

	PublicTimeout time.Duration
	// 0 = check-in tetap diterima walaupun ibadah sudah selesai (selama token masih valid).
	LateWindow time.Duration

	TokenStore    string
	SweepSchedule string

	RollPollInterval time.Duration
	PublicRateMax    int
	StaffRoles       []string
}

func DefaultCheckinConfig() CheckinConfig {
	return CheckinConfig{
		TokenPollInterval: 55 * time.Second,
		RotationGrace:     5 * time.Second,
		StaticTTL:         24 * time.Hour,
		TokenBytes:        32,
		PublicTimeout:     3 * time.Second,
		LateWindow:        0,
		TokenStore:        TokenStorePostgres,
		SweepSchedule:     "@every 5m",
		RollPollInterval:  30 * time.Second,
		PublicRateMax:     20,
		StaffRoles:        constants.StaffAndAbove,
	}
}

func LoadCheckinConfig() (CheckinConfig, error) {
	def := DefaultCheckinConfig()
	cfg := CheckinConfig{
		TokenPollInterval: GetDurationEnv("CHECKIN_TOKEN_POLL_INTERVAL", def.TokenPollInterval),
		RotationGrace:     GetDurationEnv("CHECKIN_ROTATION_GRACE", def.RotationGrace),
		StaticTTL:         GetDurationEnv("CHECKIN_STATIC_TTL", def.StaticTTL),
		TokenBytes:        GetIntEnv("CHECKIN_TOKEN_BYTES", def.TokenBytes),
		PublicTimeout:     GetDurationEnv("CHECKIN_PUBLIC_TIMEOUT", def.PublicTimeout),
		LateWindow:        GetDurationEnv("CHECKIN_LATE_WINDOW", def.LateWindow),
		TokenStore:        strings.ToLower(GetEnv("CHECKIN_TOKEN_STORE", def.TokenStore)),
		SweepSchedule:     GetEnv("CHECKIN_SWEEP_SCHEDULE", def.SweepSchedule),
		RollPollInterval:  GetDurationEnv("CHECKIN_ROLL_POLL_INTERVAL", def.RollPollInterval),
		PublicRateMax:     GetIntEnv("CHECKIN_PUBLIC_RATE_MAX", def.PublicRateMax),
		StaffRoles:        splitCSV(GetEnv("CHECKIN_STAFF_ROLES", strings.Join(def.StaffRoles, ","))),
	}
	return cfg, cfg.Validate()
}

// RotatingTTL = interval polling + grace.
func (c CheckinConfig) RotatingTTL() time.Duration {
	return c.TokenPollInterval + c.RotationGrace
}

func (c CheckinConfig) Validate() error {
	if c.TokenPollInterval <= 0 {
		return fmt.Errorf("CHECKIN_TOKEN_POLL_INTERVAL harus > 0")
	}
	// Grace wajib ada: tanpa grace, latency jaringan membuat kode di layar mati sebelum diganti.
	if c.RotationGrace <= 0 {
		return fmt.Errorf("CHECKIN_ROTATION_GRACE harus > 0")
	}
	if c.StaticTTL <= c.RotatingTTL() {
		return fmt.Errorf("CHECKIN_STATIC_TTL (%s) harus lebih panjang dari masa berlaku token rotating (%s)", c.StaticTTL, c.RotatingTTL())
	}
	if c.TokenBytes < MinTokenBytes || c.TokenBytes > MaxTokenBytes {
		return fmt.Errorf("CHECKIN_TOKEN_BYTES harus %d..%d, dapat %d", MinTokenBytes, MaxTokenBytes, c.TokenBytes)
	}
	if c.PublicTimeout <= 0 {
		return fmt.Errorf("CHECKIN_PUBLIC_TIMEOUT harus > 0")
	}
	if c.LateWindow < 0 {
		return fmt.Errorf("CHECKIN_LATE_WINDOW tidak boleh negatif")
	}
	switch c.TokenStore {
	case TokenStorePostgres, TokenStoreMemory:
	default:
		return fmt.Errorf("CHECKIN_TOKEN_STORE tidak dikenal: %q", c.TokenStore)
	}
	if len(c.StaffRoles) == 0 {
		return fmt.Errorf("CHECKIN_STAFF_ROLES kosong")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
