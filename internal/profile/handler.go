package profile

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/redmonkez12/booking-project/internal/httputil"
	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/user"
	"github.com/redmonkez12/booking-project/internal/validation"
)

const (
	// maxProfileBody leaves room above the avatar limit so oversized files
	// reach validation instead of failing to parse
	maxProfileBody   = 8 << 20
	maxProfileMemory = 4 << 20
	fieldClearAvatar = "avatar-clear"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UpdateProfileRequest is the JSON form of a profile edit; omitted fields are left unchanged
type UpdateProfileRequest struct {
	PhoneNumber *string `json:"phone_number"`
	Bio         *string `json:"bio"`
	DateOfBirth *string `json:"date_of_birth"`
	ClearAvatar bool    `json:"avatar_clear"`
}

// ProfileResponse is the profile page payload
type ProfileResponse struct {
	User           *user.User `json:"user"`
	Profile        *Profile   `json:"profile"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	AvatarThumbURL string     `json:"avatar_thumb_url,omitempty"`
}

// View returns the authenticated user's profile
// @Summary      View profile
// @Description  Return the signed-in user and their profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} ProfileResponse
// @Failure      401 {object} httputil.ErrorResponse "Not signed in"
// @Router       /users/profile [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "authentication required", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	p, err := h.service.Get(r.Context(), u.ID)
	if err != nil {
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.respondProfile(w, r, u, p, http.StatusOK)
}

// Update applies a profile edit
// @Summary      Edit profile
// @Description  Update phone number, bio, date of birth and avatar. All submitted fields are saved together or not at all.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        phone_number  formData string false "Phone number"
// @Param        bio           formData string false "Bio (max 500 characters)"
// @Param        date_of_birth formData string false "Date of birth (YYYY-MM-DD)"
// @Param        avatar        formData file   false "Avatar image (max 2MB)"
// @Param        avatar-clear  formData bool   false "Remove the current avatar"
// @Success      200 {object} ProfileResponse
// @Failure      401 {object} httputil.ErrorResponse "Not signed in"
// @Failure      422 {object} httputil.ErrorResponse "Field errors"
// @Router       /users/profile [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "authentication required", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileBody)

	req, err := readUpdateRequest(r)
	if err != nil {
		logger.Warn("invalid profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), u.ID, req)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			logger.Warn("profile update rejected", "fields", len(fieldErrs))
			httputil.RespondFieldErrors(w, fieldErrs, submittedForm(req))
			return
		}
		logger.Error("profile update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated", "user_id", u.ID)

	if httputil.WantsHTML(r) {
		http.Redirect(w, r, "/users/profile", http.StatusSeeOther)
		return
	}
	h.respondProfile(w, r, u, p, http.StatusOK)
}

func (h *Handler) respondProfile(w http.ResponseWriter, r *http.Request, u *user.User, p *Profile, status int) {
	avatarURL, thumbURL, err := h.service.AvatarURLs(r.Context(), p)
	if err != nil {
		// The profile is still useful without avatar links
		logging.GetLoggerFromContext(r.Context()).Warn("failed to presign avatar", "error", err.Error())
	}

	httputil.RespondJSON(w, ProfileResponse{
		User:           u,
		Profile:        p,
		AvatarURL:      avatarURL,
		AvatarThumbURL: thumbURL,
	}, status)
}

// readUpdateRequest collects only the fields the client actually submitted
func readUpdateRequest(r *http.Request) (UpdateRequest, error) {
	var req UpdateRequest

	if !httputil.IsFormRequest(r) {
		var body UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, err
		}
		req.PhoneNumber = body.PhoneNumber
		req.Bio = body.Bio
		req.DateOfBirth = body.DateOfBirth
		req.ClearAvatar = body.ClearAvatar
		return req, nil
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProfileMemory); err != nil {
			return req, err
		}
	} else if err := r.ParseForm(); err != nil {
		return req, err
	}

	req.PhoneNumber = formValue(r, validation.FieldPhoneNumber)
	req.Bio = formValue(r, validation.FieldBio)
	req.DateOfBirth = formValue(r, validation.FieldDateOfBirth)
	if v := formValue(r, fieldClearAvatar); v != nil {
		req.ClearAvatar = *v == "on" || *v == "true" || *v == "1"
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File[validation.FieldAvatar]; len(files) > 0 {
			upload, err := readAvatar(files[0])
			if err != nil {
				return req, err
			}
			req.Avatar = upload
		}
	}

	return req, nil
}

func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// readAvatar reads at most one byte past the limit; the declared size
// decides validation
func readAvatar(fh *multipart.FileHeader) (*AvatarUpload, error) {
	if fh.Size == 0 && fh.Filename == "" {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, validation.MaxAvatarBytes+1))
	if err != nil {
		return nil, err
	}

	return &AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

func submittedForm(req UpdateRequest) map[string]string {
	form := make(map[string]string)
	if req.PhoneNumber != nil {
		form[validation.FieldPhoneNumber] = *req.PhoneNumber
	}
	if req.Bio != nil {
		form[validation.FieldBio] = *req.Bio
	}
	if req.DateOfBirth != nil {
		form[validation.FieldDateOfBirth] = *req.DateOfBirth
	}
	return form
}
