package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecordBody = `{"Player":"Ecual","Score":10,"Kills":5,"Deaths":2,"Assists":1,"Team Kills":0,"Blocks":3,"Impact Rating":7.5,"Regiment":"63e","Win":1,"Date":"2021-02-01"}`

func (e *testEnv) do(t *testing.T, method, path, body, token string) (int, map[string]interface{}, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var obj map[string]interface{}
	_ = sonic.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, string(raw)
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	status, body, raw := e.do(t, http.MethodPost, "/api/admin/login", `{"username":"archivist","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, status, raw)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestInsert_ReturnsCreatedRecord(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	status, body, raw := env.do(t, http.MethodPost, "/Pickups/insertPlayer", validRecordBody, token)
	require.Equal(t, http.StatusCreated, status, raw)

	assert.NotEmpty(t, body["_id"])
	assert.Equal(t, "Ecual", body["Player"])
	assert.Equal(t, 10.0, body["Score"])
	assert.Equal(t, 5.0, body["Kills"])
	assert.Equal(t, 2.0, body["Deaths"])
	assert.Equal(t, 1.0, body["Assists"])
	assert.Equal(t, 0.0, body["Team Kills"])
	assert.Equal(t, 3.0, body["Blocks"])
	assert.Equal(t, 7.5, body["Impact Rating"])
	assert.Equal(t, "63e", body["Regiment"])
	assert.Equal(t, 1.0, body["Win"])
	assert.Equal(t, "2021-02-01", body["Date"])

	// round trip through get by id
	id := body["_id"].(string)
	status, fetched, _ := env.do(t, http.MethodGet, "/Pickups/"+id, "", token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, fetched)
}

func TestPublicList_SearchFindsInsertedRecord(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.pickups.seed("Someone Else", "2021-01-01", 3)

	status, _, _ := env.do(t, http.MethodPost, "/Pickups/insertPlayer", validRecordBody, token)
	require.Equal(t, http.StatusCreated, status)

	status, body, _ := env.do(t, http.MethodGet, "/Pickups/public?search=Ecual&page=1&limit=10", "", "")
	require.Equal(t, http.StatusOK, status)

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Ecual", data[0].(map[string]interface{})["Player"])

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, 1.0, pagination["total"])
	assert.Equal(t, 1.0, pagination["pages"])
	assert.Equal(t, 1.0, pagination["currentPage"])
	assert.Equal(t, 10.0, pagination["limit"])
}

func TestInvalidID_MakesNoStoreCall(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		status, body, _ := env.do(t, method, "/Pickups/abc", "", token)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", body["code"])
	}

	status, _, _ := env.do(t, http.MethodPut, "/Pickups/abc", validRecordBody, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, env.pickups.calls)
}

func TestDelete_SecondDeleteIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	p := env.pickups.seed("Ecual", "2021-02-01", 7.5)

	status, body, _ := env.do(t, http.MethodDelete, "/Pickups/"+p.ID.Hex(), "", token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, p.ID.Hex(), body["_id"])

	status, _, _ = env.do(t, http.MethodDelete, "/Pickups/"+p.ID.Hex(), "", token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = env.do(t, http.MethodDelete, "/Pickups/0123456789abcdef01234567", "", token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInsert_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	status, body, _ := env.do(t, http.MethodPost, "/Pickups/insertPlayer", `{"Player":"Ecual"}`, token)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Contains(t, body["message"], "Missing required fields")
	assert.Contains(t, body["fields"], "Impact Rating")

	for _, field := range []string{"Score", "Kills", "Deaths", "Assists", "Team Kills", "Blocks", "Impact Rating"} {
		t.Run(field, func(t *testing.T) {
			bad := strings.Replace(validRecordBody, fmt.Sprintf(`"%s":`, field), fmt.Sprintf(`"%s":"lots","x%s":`, field, field), 1)
			status, body, _ := env.do(t, http.MethodPost, "/Pickups/insertPlayer", bad, token)
			require.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, []interface{}{field}, body["fields"])
		})
	}

	status, _, _ = env.do(t, http.MethodPost, "/Pickups/insertPlayer", `{not json`, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, env.pickups.calls)
}

func TestUpdate_ReplacesRecord(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	p := env.pickups.seed("Ecual", "2021-02-01", 7.5)

	updated := strings.Replace(validRecordBody, `"Kills":5`, `"Kills":"9"`, 1)
	status, body, raw := env.do(t, http.MethodPut, "/Pickups/"+p.ID.Hex(), updated, token)
	require.Equal(t, http.StatusOK, status, raw)
	assert.Equal(t, 9.0, body["Kills"])
	assert.Equal(t, p.ID.Hex(), body["_id"])

	status, _, _ = env.do(t, http.MethodPut, "/Pickups/0123456789abcdef01234567", validRecordBody, token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdate_ValidatesLikeInsert(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	p := env.pickups.seed("Ecual", "2021-02-01", 7.5)
	path := "/Pickups/" + p.ID.Hex()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing fields", `{"Player":"Ecual"}`, "Kills"},
		{"non-numeric kills", strings.Replace(validRecordBody, `"Kills":5`, `"Kills":"lots"`, 1), "Kills"},
		{"bad date", strings.Replace(validRecordBody, `"2021-02-01"`, `"yesterday"`, 1), "Date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, raw := env.do(t, http.MethodPut, path, tt.body, token)
			require.Equal(t, http.StatusBadRequest, status, raw)
			assert.Equal(t, "VALIDATION_FAILED", body["code"])
			assert.Contains(t, body["fields"], tt.wantField)
		})
	}

	// the stored record is untouched
	status, body, _ := env.do(t, http.MethodGet, path, "", token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7.5, body["Impact Rating"])
}

func TestList_PaginationProperties(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	for day := 1; day <= 23; day++ {
		env.pickups.seed(fmt.Sprintf("P%02d", day), fmt.Sprintf("2022-03-%02d", day), 1)
	}

	total := 23
	for _, limit := range []int{1, 5, 10, 23, 50} {
		for page := 1; page <= 4; page++ {
			path := fmt.Sprintf("/Pickups?page=%d&limit=%d", page, limit)
			status, body, _ := env.do(t, http.MethodGet, path, "", token)
			require.Equal(t, http.StatusOK, status)

			data := body["data"].([]interface{})
			want := total - (page-1)*limit
			if want > limit {
				want = limit
			}
			if want < 0 {
				want = 0
			}
			assert.Len(t, data, want, path)

			pages := (total + limit - 1) / limit
			assert.Equal(t, float64(pages), body["pagination"].(map[string]interface{})["pages"], path)

			prev := "9999-12-31"
			for _, item := range data {
				date := item.(map[string]interface{})["Date"].(string)
				assert.LessOrEqual(t, date, prev, path)
				prev = date
			}
		}
	}
}

func TestList_BadParamsFallBackAndLimitIsClamped(t *testing.T) {
	env := newTestEnv(t)
	env.pickups.seed("A", "2022-01-01", 1)

	status, body, _ := env.do(t, http.MethodGet, "/Pickups/public?page=-3&limit=zero&sort=-Date", "", "")
	require.Equal(t, http.StatusOK, status)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, 1.0, pagination["currentPage"])
	assert.Equal(t, 10.0, pagination["limit"])

	_, body, _ = env.do(t, http.MethodGet, "/Pickups/public?limit=100000", "", "")
	assert.Equal(t, 100.0, body["pagination"].(map[string]interface{})["limit"])
}

func TestList_HugePageIsEmptyNotError(t *testing.T) {
	env := newTestEnv(t)
	env.pickups.seed("Ecual", "2021-02-01", 7.5)

	status, body, raw := env.do(t, http.MethodGet, "/Pickups/public?page=9223372036854775807&limit=100", "", "")
	require.Equal(t, http.StatusOK, status, raw)
	assert.Empty(t, body["data"])
	assert.Equal(t, 1.0, body["pagination"].(map[string]interface{})["total"])
}

func TestList_EmptyResultIsEmptyArray(t *testing.T) {
	env := newTestEnv(t)

	status, _, raw := env.do(t, http.MethodGet, "/Pickups/public", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, raw, `"data":[]`)
}

func TestList_StoreErrorIsGeneric500(t *testing.T) {
	env := newTestEnv(t)
	env.pickups.failAll = errors.New("server selection timeout: 10.0.0.3:27017")

	status, body, raw := env.do(t, http.MethodGet, "/Pickups/public", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, raw, "10.0.0.3")
}

func TestListByPlayer(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.pickups.seed("Ecual", "2021-02-01", 7.5)
	env.pickups.seed("ecualizer", "2021-02-02", 2)
	env.pickups.seed("Bob", "2021-02-03", 2)

	status, body, _ := env.do(t, http.MethodGet, "/Pickups/player/ecual", "", token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, _, _ = env.do(t, http.MethodGet, "/Pickups/player/Nobody", "", token)
	assert.Equal(t, http.StatusNotFound, status)

	calls := env.pickups.calls
	status, body, _ = env.do(t, http.MethodGet, "/Pickups/player/%20", "", token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid playerName", body["message"])
	assert.Equal(t, calls, env.pickups.calls)

	status, _, _ = env.do(t, http.MethodGet, "/Pickups/player/Ecual", "", "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSuggestions(t *testing.T) {
	env := newTestEnv(t)
	env.pickups.seed("Ecual", "2021-02-01", 1)
	env.pickups.seed("Ecual", "2021-02-02", 1)
	env.pickups.seed("Equalizer", "2021-02-03", 1)
	env.pickups.seed("Necual", "2021-02-04", 1)

	status, _, raw := env.do(t, http.MethodGet, "/Pickups/suggestions?query=cual", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["Ecual","Necual"]`, raw)

	_, _, raw = env.do(t, http.MethodGet, "/Pickups/suggestions?query=cual&limit=1", "", "")
	assert.JSONEq(t, `["Ecual"]`, raw)

	_, _, raw = env.do(t, http.MethodGet, "/Pickups/suggestions", "", "")
	assert.JSONEq(t, `[]`, raw)
}

func TestProtectedRoutes_AuthGate(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/Pickups", "", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "No token provided", body["message"])

	status, _, _ = env.do(t, http.MethodPost, "/Pickups/insertPlayer", validRecordBody, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, env.pickups.calls)
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])

	status, body, _ = env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", body["error"])
}

func TestPprof_DisabledByDefaultAndAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	status, _, _ := env.do(t, http.MethodGet, "/debug/pprof/", "", token)
	assert.Equal(t, http.StatusNotFound, status)

	env = newTestEnvWith(t, func(cfg *config.Config) { cfg.Server.PprofEnabled = true })
	token = env.login(t)

	status, _, _ = env.do(t, http.MethodGet, "/debug/pprof/", "", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = env.do(t, http.MethodGet, "/debug/pprof/", "", token)
	assert.Equal(t, http.StatusOK, status)
}
