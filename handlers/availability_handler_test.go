package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/handlers"
	"github.com/hospitalhq/hospital_ops/models"
	"github.com/hospitalhq/hospital_ops/routes"
	"github.com/hospitalhq/hospital_ops/scheduling"
)

const testSecret = "handler-test-secret"

var (
	testBranchID = uuid.New()
	testDoctorID = uuid.New()
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	os.Setenv("JWT_SECRET", testSecret)

	doctor := models.Doctor{ID: testDoctorID, FullName: "Dr. Wanjiku", BranchID: testBranchID, Active: true}
	store := scheduling.NewMemStore()
	store.UseBranchResolver(func(id uuid.UUID) uuid.UUID {
		if id == testDoctorID {
			return testBranchID
		}
		return uuid.Nil
	})
	handlers.Setup(scheduling.NewService(store, scheduling.NewMemDirectory(doctor), nil, nil))

	app := fiber.New()
	routes.AvailabilityRoutes(app)
	return app
}

func signToken(t *testing.T, role models.Role, branchID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":   uuid.New().String(),
		"role":      string(role),
		"branch_id": branchID.String(),
		"name":      "Test Actor",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func upsertBody(tokenCount int, version int64) map[string]any {
	return map[string]any{
		"day_of_week": 1,
		"version":     version,
		"slots": []map[string]any{
			{"start_time": "09:00", "end_time": "10:00", "hours_available": 1, "token_count": tokenCount},
		},
	}
}

func TestAvailabilityAPI_RequiresJWT(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/doctor-availability", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing JWT, got %d", resp.StatusCode)
	}
}

func TestAvailabilityAPI_UpsertAndRead(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)

	resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, upsertBody(3, 0))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on create, got %d: %v", resp.StatusCode, decodeBody(t, resp))
	}
	body := decodeBody(t, resp)
	schedule, ok := body["schedule"].(map[string]any)
	if !ok {
		t.Fatalf("missing schedule in response: %v", body)
	}
	if schedule["day_status"] != "available" {
		t.Fatalf("expected available day, got %v", schedule["day_status"])
	}

	resp = doJSON(t, app, http.MethodGet, "/api/doctor-availability/"+testDoctorID.String(), admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on read, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	schedules, ok := body["schedules"].([]any)
	if !ok || len(schedules) != 1 {
		t.Fatalf("expected one day in weekly schedule, got %v", body["schedules"])
	}
}

func TestAvailabilityAPI_StaleVersionIs409(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)
	path := "/api/doctor-availability/" + testDoctorID.String()

	if resp := doJSON(t, app, http.MethodPost, path, admin, upsertBody(3, 0)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upsert failed: %d", resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodPost, path, admin, upsertBody(4, 0))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for stale version, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["kind"] != "version_conflict" {
		t.Fatalf("expected version_conflict kind, got %v", body["kind"])
	}
}

func TestAvailabilityAPI_ReserveUntilFull(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)
	receptionist := signToken(t, models.RoleReceptionist, testBranchID)

	if resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, upsertBody(2, 0)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upsert failed: %d", resp.StatusCode)
	}

	reservePath := fmt.Sprintf("/api/doctor-availability/%s/1/slots/0/reserve", testDoctorID)
	for want := 1; want <= 2; want++ {
		resp := doJSON(t, app, http.MethodPost, reservePath, receptionist, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 on reserve, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if int(body["token"].(float64)) != want {
			t.Fatalf("expected token %d, got %v", want, body["token"])
		}
		if body["booking_ref"] == "" {
			t.Fatal("expected a booking reference")
		}
	}

	resp := doJSON(t, app, http.MethodPost, reservePath, receptionist, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 when full, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["kind"] != "capacity_exceeded" {
		t.Fatalf("expected capacity_exceeded kind, got %v", body["kind"])
	}
}

func TestAvailabilityAPI_ReleaseIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)

	if resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, upsertBody(2, 0)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upsert failed: %d", resp.StatusCode)
	}
	reservePath := fmt.Sprintf("/api/doctor-availability/%s/1/slots/0/reserve", testDoctorID)
	if resp := doJSON(t, app, http.MethodPost, reservePath, admin, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed reserve failed: %d", resp.StatusCode)
	}

	releasePath := fmt.Sprintf("/api/doctor-availability/%s/1/slots/0/release", testDoctorID)
	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, http.MethodPost, releasePath, admin, map[string]any{"token": 1})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("release attempt %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	capacityPath := fmt.Sprintf("/api/doctor-availability/%s/1/slots/0/capacity", testDoctorID)
	resp := doJSON(t, app, http.MethodGet, capacityPath, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("capacity read failed: %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if int(body["booked"].(float64)) != 0 {
		t.Fatalf("expected empty ledger after release, got %v", body["booked"])
	}
}

func TestAvailabilityAPI_CrossBranchIs403(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)
	outsider := signToken(t, models.RoleSubAdmin, uuid.New())

	if resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, upsertBody(3, 0)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upsert failed: %d", resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/doctor-availability/"+testDoctorID.String(), outsider, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-branch read, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), outsider, upsertBody(3, 1))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-branch write, got %d", resp.StatusCode)
	}
}

func TestAvailabilityAPI_ReceptionistCannotEdit(t *testing.T) {
	app := newTestApp(t)
	receptionist := signToken(t, models.RoleReceptionist, testBranchID)

	resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), receptionist, upsertBody(3, 0))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for receptionist edit, got %d", resp.StatusCode)
	}
}

func TestAvailabilityAPI_OverlapIs409(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)

	body := map[string]any{
		"day_of_week": 1,
		"version":     0,
		"slots": []map[string]any{
			{"start_time": "09:00", "end_time": "11:00", "hours_available": 2, "token_count": 3},
			{"start_time": "10:30", "end_time": "12:00", "hours_available": 1.5, "token_count": 3},
		},
	}
	resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping slots, got %d", resp.StatusCode)
	}
	if got := decodeBody(t, resp); got["kind"] != "slot_conflict" {
		t.Fatalf("expected slot_conflict kind, got %v", got["kind"])
	}
}

func TestAvailabilityAPI_IdempotencyKeyDedupes(t *testing.T) {
	app := newTestApp(t)
	admin := signToken(t, models.RoleSubAdmin, testBranchID)

	if resp := doJSON(t, app, http.MethodPost, "/api/doctor-availability/"+testDoctorID.String(), admin, upsertBody(5, 0)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed upsert failed: %d", resp.StatusCode)
	}

	reservePath := fmt.Sprintf("/api/doctor-availability/%s/1/slots/0/reserve", testDoctorID)
	reserve := func() int {
		req := httptest.NewRequest(http.MethodPost, reservePath, nil)
		req.Header.Set("Authorization", "Bearer "+admin)
		req.Header.Set("Idempotency-Key", "booking-retry-7")
		resp, err := app.Test(req, 5000)
		if err != nil {
			t.Fatalf("reserve: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		return int(decodeBody(t, resp)["token"].(float64))
	}

	first := reserve()
	second := reserve()
	if first != second {
		t.Fatalf("retry with the same key got a new token: %d then %d", first, second)
	}

	// The key is dedupe state, not schedule data; readers must never see it.
	resp := doJSON(t, app, http.MethodGet, "/api/doctor-availability/"+testDoctorID.String(), admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weekly read failed: %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	schedule := body["schedules"].([]any)[0].(map[string]any)
	availability := schedule["availability"].(map[string]any)
	slot := availability["slots"].([]any)[0].(map[string]any)
	if _, leaked := slot["grants"]; leaked {
		t.Fatalf("idempotency keys leaked into the API response: %v", slot["grants"])
	}
}
