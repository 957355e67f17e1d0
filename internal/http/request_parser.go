package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"myy/internal/core"
)

const maxBodyBytes = 64 << 10

var (
	errBadRequest   = errors.New("malformed request")
	errInvalidQuery = errors.New("invalid query parameter")
)

// entryRequest is the body of POST /api/entries. Amount accepts a JSON
// number or a string using either decimal separator.
type entryRequest struct {
	Type     string          `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Date     string          `json:"date"`
}

type taskRequest struct {
	Text string `json:"text"`
	Due  string `json:"due"`
}

type preferencesRequest struct {
	DarkMode *bool `json:"darkMode"`
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequest)
	}
	return nil
}

// parseAmount accepts 12.5, "12.5" or "12,5".
func parseAmount(raw json.RawMessage) (core.Money, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return core.Money{}, core.ErrInvalidAmount
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return core.Money{}, core.ErrInvalidAmount
		}
		s = str
	}
	return core.ParseAmount(s)
}

// parseOptionalDate returns the zero Date for an empty string.
func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// parseMonth reads the month query parameter. When absent, ok is false and
// the current month is returned.
func parseMonth(query url.Values, now time.Time) (month string, ok bool, err error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.CurrentMonth(now), false, nil
	}
	m, err := core.ParseMonthKey(v)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errInvalidQuery, err)
	}
	return m, true, nil
}

// confirmed reports whether the client pre-approved a destructive action.
func confirmed(query url.Values) bool {
	ok, err := strconv.ParseBool(query.Get("confirm"))
	return err == nil && ok
}

// sanitizeInput trims whitespace and strips control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
