package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/checkin/tokens/service"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"
	"gerejaku_backend/internals/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type tokenEnvelope struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Data      struct {
		Token               string `json:"token"`
		Kind                string `json:"kind"`
		RefreshAfterSeconds int    `json:"refresh_after_seconds"`
	} `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, uuid.UUID) {
	t.Helper()
	db := testutil.OpenDB(t)
	occ := testutil.SeedOccurrence(t, db, testutil.Sunday07, 2*time.Hour)
	clock := testutil.NewClock(testutil.Sunday07)

	iss := service.NewIssuer(store.NewMemoryStore(), occRepo.NewOccurrenceRepository(db), configs.DefaultCheckinConfig())
	iss.Now = clock.Now

	ctl := NewTokenController(iss)
	app := fiber.New()
	app.Get("/occurrences/:occurrence_id/rotating-token", ctl.GetRotatingToken)
	app.Get("/occurrences/:occurrence_id/static-token", ctl.GetStaticToken)
	return app, occ.ServiceOccurrenceID
}

func doGet(t *testing.T, app *fiber.App, path string) (int, tokenEnvelope, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env tokenEnvelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, resp.Header.Get(fiber.HeaderCacheControl)
}

func TestTokenController(t *testing.T) {
	app, occID := setupApp(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
		wantKind   string
		wantPoll   int
	}{
		{
			name:       "Given running occurrence When requesting rotating token Then 200 with poll hint",
			path:       "/occurrences/" + occID.String() + "/rotating-token",
			wantStatus: fiber.StatusOK,
			wantKind:   "ROTATING",
			wantPoll:   55,
		},
		{
			name:       "Given running occurrence When requesting static token Then 200",
			path:       "/occurrences/" + occID.String() + "/static-token",
			wantStatus: fiber.StatusOK,
			wantKind:   "STATIC",
			wantPoll:   86400,
		},
		{
			name:       "Given unknown occurrence When requesting token Then 404",
			path:       "/occurrences/" + uuid.NewString() + "/rotating-token",
			wantStatus: fiber.StatusNotFound,
			wantCode:   "OCCURRENCE_NOT_FOUND",
		},
		{
			name:       "Given malformed id When requesting token Then 400",
			path:       "/occurrences/not-a-uuid/rotating-token",
			wantStatus: fiber.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env, cache := doGet(t, app, tt.path)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantCode != "" && env.ErrorCode != tt.wantCode {
				t.Errorf("error_code = %q, want %q", env.ErrorCode, tt.wantCode)
			}
			if tt.wantStatus != fiber.StatusOK {
				return
			}
			if cache != "no-store" {
				t.Errorf("Cache-Control = %q, want no-store", cache)
			}
			if env.Data.Kind != tt.wantKind || env.Data.Token == "" {
				t.Errorf("data = %+v, want kind %s with token", env.Data, tt.wantKind)
			}
			if env.Data.RefreshAfterSeconds != tt.wantPoll {
				t.Errorf("refresh_after_seconds = %d, want %d", env.Data.RefreshAfterSeconds, tt.wantPoll)
			}
		})
	}
}
