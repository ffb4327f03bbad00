package endpoint_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotwise/booking-api/config"
	"github.com/slotwise/booking-api/model"
)

func uploadTestFile(t *testing.T, env testEnv, userID uint, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range authHeader(t, userID) {
		req.Header.Set(k, v)
	}
	env.Router.ServeHTTP(w, req)
	return w
}

func TestUploadFile(t *testing.T) {
	env := setupEndpointTest(t)
	user := createTestUser(t, env.DB, "Alice", "alice@example.com", false)

	w := uploadTestFile(t, env, user.ID, "avatar.png", "fake image bytes")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	assert.Equal(t, "avatar.png", resp.Name)
	assert.True(t, strings.HasSuffix(resp.Path, ".png"), "stored name keeps the extension")
	assert.Equal(t, "/files/"+resp.Path, resp.URL)

	stored, err := os.ReadFile(filepath.Join(config.LoadConfig().UploadDir, resp.Path))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	assert.Equal(t, "fake image bytes", string(stored))

	// The record can now serve as an avatar.
	body, _ := json.Marshal(map[string]interface{}{"avatar_id": resp.ID})
	w2 := doRequest(env.Router, requestParams{method: "PUT", path: "/users", body: body, headers: authHeader(t, user.ID)})
	assert.Equal(t, http.StatusOK, w2.Code, w2.Body.String())

	var updated model.User
	env.DB.First(&updated, user.ID)
	if assert.NotNil(t, updated.AvatarID) {
		assert.Equal(t, resp.ID, *updated.AvatarID)
	}
}

func TestUploadFileMissingPart(t *testing.T) {
	env := setupEndpointTest(t)
	user := createTestUser(t, env.DB, "Alice", "alice@example.com", false)

	w := doRequest(env.Router, requestParams{method: "POST", path: "/files", headers: authHeader(t, user.ID)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
