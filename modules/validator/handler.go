package validator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// HTTPPath is where the validate handler is registered.
const HTTPPath = "/validate"

// ServeHTTP validates the request body and responds with the JSON report.
// The optional name query parameter labels the stream in logs and the
// report.
func (v *Validator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}

	// A read error ends the stream with a parser failure in the report, so
	// the body error is kept to tell an oversized upload apart.
	body := &errRecorder{r: http.MaxBytesReader(w, r.Body, v.cfg.MaxUploadSize)}
	report, err := v.Validate(r.Context(), name, body)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(body.err, &tooLarge):
		http.Error(w, body.err.Error(), http.StatusRequestEntityTooLarge)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		v.logger.Error("failed to write report", "err", err)
	}
}

// errRecorder remembers the first error other than io.EOF read from r.
type errRecorder struct {
	r   io.Reader
	err error
}

func (e *errRecorder) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF && e.err == nil {
		e.err = err
	}
	return n, err
}
