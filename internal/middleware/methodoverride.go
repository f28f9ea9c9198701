package middleware

import (
	"net/http"
	"strings"
)

// MethodOverride lets plain HTML forms express DELETE via a hidden
// _method field. Multipart bodies are left alone so file uploads are not
// consumed before their handler runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost &&
			strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if override := r.PostFormValue("_method"); strings.EqualFold(override, http.MethodDelete) {
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
