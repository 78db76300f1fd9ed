package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxFormMemory bounds the in-memory part of multipart parsing; larger
// parts spill to temporary files
const maxFormMemory = 4 << 20

var ErrInvalidBody = errors.New("invalid request body")

// FormBinder is implemented by request structs that can read form values
type FormBinder interface {
	BindForm(values func(key string) string)
}

// Decode fills dst from a JSON body, or from form fields when the request
// is form-encoded or multipart.
func Decode(r *http.Request, dst FormBinder) error {
	if IsFormRequest(r) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxFormMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidBody, err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		dst.BindForm(r.PostFormValue)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
