package profile

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/booking-project/internal/httputil"
	"github.com/redmonkez12/booking-project/internal/user"
)

func withUser(r *http.Request, u *user.User) *http.Request {
	return r.WithContext(user.WithUser(r.Context(), u))
}

func testUser() *user.User {
	return &user.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", CreatedAt: time.Now()}
}

func TestView_RequiresUser(t *testing.T) {
	h := NewHandler(newTestService(newFakeStore(), newFakeAvatarStore()))

	rec := httptest.NewRecorder()
	h.View(rec, httptest.NewRequest(http.MethodGet, "/users/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestView_ReturnsProfile(t *testing.T) {
	store := newFakeStore()
	u := testUser()
	store.profiles[u.ID] = &Profile{UserID: u.ID, Bio: "hello"}
	h := NewHandler(newTestService(store, newFakeAvatarStore()))

	rec := httptest.NewRecorder()
	h.View(rec, withUser(httptest.NewRequest(http.MethodGet, "/users/profile", nil), u))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User    user.User `json:"user"`
		Profile Profile   `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "hello", resp.Profile.Bio)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdate_JSON(t *testing.T) {
	store := newFakeStore()
	u := testUser()
	h := NewHandler(newTestService(store, newFakeAvatarStore()))

	body := `{"phone_number":"555-123-4567","bio":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/users/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Update(rec, withUser(req, u))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "555-123-4567", store.profiles[u.ID].PhoneNumber)
	assert.Equal(t, "hi", store.profiles[u.ID].Bio)
}

func TestUpdate_FieldErrors(t *testing.T) {
	store := newFakeStore()
	u := testUser()
	h := NewHandler(newTestService(store, newFakeAvatarStore()))

	body := `{"phone_number":"abc","bio":"` + strings.Repeat("x", 501) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/users/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Update(rec, withUser(req, u))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Fields, "phone_number")
	assert.Contains(t, resp.Fields, "bio")
	assert.Equal(t, "abc", resp.Form["phone_number"])
	assert.Empty(t, store.profiles)
}

func TestUpdate_MultipartAvatar(t *testing.T) {
	store := newFakeStore()
	avatars := newFakeAvatarStore()
	u := testUser()
	h := NewHandler(newTestService(store, avatars))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("bio", "with a picture"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Update(rec, withUser(req, u))

	require.Equal(t, http.StatusOK, rec.Code)
	saved := store.profiles[u.ID]
	require.True(t, saved.HasAvatar())
	assert.Equal(t, "with a picture", saved.Bio)
	// phone number was not submitted
	assert.Empty(t, saved.PhoneNumber)
	assert.Len(t, avatars.objects, 2)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.AvatarURL, *saved.AvatarKey)
}

func TestUpdate_BrowserRedirect(t *testing.T) {
	u := testUser()
	h := NewHandler(newTestService(newFakeStore(), newFakeAvatarStore()))

	req := httptest.NewRequest(http.MethodPost, "/users/profile", strings.NewReader("bio=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.Update(rec, withUser(req, u))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/profile", rec.Header().Get("Location"))
}

func TestUpdate_InvalidBody(t *testing.T) {
	h := NewHandler(newTestService(newFakeStore(), newFakeAvatarStore()))

	req := httptest.NewRequest(http.MethodPost, "/users/profile", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Update(rec, withUser(req, testUser()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
