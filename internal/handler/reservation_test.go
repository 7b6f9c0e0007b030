package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasanworld/concert-reserve/internal/service"
)

// The validation tests never reach the service layer, so a service with
// no live DB behind it is fine here.
func newReservationHandler() *ReservationHandler {
	return NewReservationHandler(service.NewReservationService(nil, nil, nil, nil, 4, "secret"))
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestCreateReservation_FormValidation(t *testing.T) {
	h := newReservationHandler()

	valid := map[string]interface{}{
		"seatIds":      []string{"s1"},
		"customerName": "Kim Minji",
		"phoneNumber":  "010-1234-5678",
		"password":     "secret-pw-1",
	}

	cases := []struct {
		name  string
		patch map[string]interface{}
	}{
		{"name too short", map[string]interface{}{"customerName": "K"}},
		{"name too long", map[string]interface{}{"customerName": strings.Repeat("k", 51)}},
		{"phone wrong shape", map[string]interface{}{"phoneNumber": "010-123-45678"}},
		{"phone not mobile prefix", map[string]interface{}{"phoneNumber": "011-1234-5678"}},
		{"phone without dashes", map[string]interface{}{"phoneNumber": "01012345678"}},
		{"password too short", map[string]interface{}{"password": "short1"}},
		{"password too long", map[string]interface{}{"password": strings.Repeat("p", 21)}},
		{"no seats", map[string]interface{}{"seatIds": []string{}}},
		{"too many seats", map[string]interface{}{"seatIds": []string{"a", "b", "c", "d", "e"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]interface{}{}
			for k, v := range valid {
				payload[k] = v
			}
			for k, v := range tc.patch {
				payload[k] = v
			}
			raw, err := json.Marshal(payload)
			require.NoError(t, err)

			rec := postJSON(t, h.Create, "/v1/reservations", string(raw))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, codeValidation, errorCode(t, rec))
		})
	}
}

func TestValidateReservationForm_UnicodeNameLength(t *testing.T) {
	// Two hangul syllables are two characters, not six bytes.
	assert.Empty(t, validateReservationForm("김민", "010-1234-5678", "secret-pw-1"))
	assert.NotEmpty(t, validateReservationForm("김", "010-1234-5678", "secret-pw-1"))
}

func TestLookup_RequiresBothFields(t *testing.T) {
	h := newReservationHandler()

	rec := postJSON(t, h.Lookup, "/v1/reservations/lookup", `{"phoneNumber":"010-1234-5678"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, errorCode(t, rec))

	rec = postJSON(t, h.Lookup, "/v1/reservations/lookup", `{"password":"secret-pw-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHold_RequiresConcertID(t *testing.T) {
	h := NewSeatHandler(service.NewHoldService(nil, nil, nil, "secret"))

	rec := postJSON(t, h.Hold, "/v1/seats/hold", `{"seatIds":["s1"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, errorCode(t, rec))
}

func TestValidateReservationForm(t *testing.T) {
	assert.Empty(t, validateReservationForm("Kim Minji", "010-1234-5678", "secret-pw-1"))
	assert.NotEmpty(t, validateReservationForm("", "010-1234-5678", "secret-pw-1"))
	assert.NotEmpty(t, validateReservationForm("Kim Minji", "010 1234 5678", "secret-pw-1"))
	assert.NotEmpty(t, validateReservationForm("Kim Minji", "010-1234-5678", ""))
}
