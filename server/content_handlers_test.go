package server_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigHandlers(t *testing.T) {
	f := newFixture(t)

	t.Run("null before first save", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/config", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success":true,"config":null}`, readBody(t, resp))
	})

	t.Run("save requires admin", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/config", strings.NewReader(`{"config":{"a":1}}`), jsonHeader())
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects non-object config", func(t *testing.T) {
		for _, body := range []string{`{"config":[1,2]}`, `{"config":"text"}`, `{}`} {
			resp := f.do(t, http.MethodPut, "/api/config", strings.NewReader(body), f.adminHeader(t))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			require.Equal(t, "Invalid config format", decode(t, resp)["error"])
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/config", strings.NewReader(`{"config":`), f.adminHeader(t))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid request body", decode(t, resp)["error"])
	})

	t.Run("save then read back", func(t *testing.T) {
		doc := `{"couple":{"bride":"Asha","groom":"Ravi"},"venues":[{"name":"Hall"}]}`
		resp := f.do(t, http.MethodPut, "/api/config", strings.NewReader(`{"config": `+doc+`}`), f.adminHeader(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success":true,"message":"Config saved"}`, readBody(t, resp))

		resp = f.do(t, http.MethodGet, "/api/config", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success":true,"config":`+doc+`}`, readBody(t, resp))
	})
}

const validRSVP = `{"fullName":"  Priya Shah ","email":"priya@example.com","numGuests":"5+","events":["Wedding","Party","Sangeet"],"dietary":"veg"}`

func TestRSVPHandlers(t *testing.T) {
	f := newFixture(t)

	t.Run("public submit", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/rsvp", strings.NewReader(validRSVP), jsonHeader())
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.JSONEq(t, `{"success":true,"message":"RSVP received successfully"}`, readBody(t, resp))

		resp = f.do(t, http.MethodPost, "/api/rsvp",
			strings.NewReader(`{"fullName":"Dev","email":"dev@example.com","numGuests":"2","events":["Reception"]}`), jsonHeader())
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("validation details", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/rsvp", strings.NewReader(`{"email":"nope","numGuests":"9"}`), jsonHeader())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode(t, resp)
		require.Equal(t, "Validation failed", body["error"])
		require.ElementsMatch(t, []any{
			"Full name is required",
			"Invalid email format",
			"Invalid number of guests",
			"At least one event must be selected",
		}, body["details"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/rsvp", strings.NewReader(`not json`), jsonHeader())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list requires admin", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/rsvp", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var firstID float64
	t.Run("list with totals", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/rsvp", nil, f.adminHeader(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		require.Equal(t, float64(2), body["total"])
		require.Equal(t, float64(7), body["totalGuests"])

		list := body["rsvps"].([]any)
		require.Len(t, list, 2)
		newest := list[0].(map[string]any)
		require.Equal(t, "Dev", newest["fullName"])
		oldest := list[1].(map[string]any)
		require.Equal(t, "Priya Shah", oldest["fullName"])
		require.Equal(t, []any{"Wedding", "Sangeet"}, oldest["events"])
		firstID = oldest["id"].(float64)
	})

	t.Run("delete rejects bad ids", func(t *testing.T) {
		for _, q := range []string{"", "?id=abc", "?id=0", "?id=-3", "?id=1.5"} {
			resp := f.do(t, http.MethodDelete, "/api/rsvp"+q, nil, f.adminHeader(t))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
			require.Equal(t, "Invalid RSVP ID", decode(t, resp)["error"])
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/api/rsvp?id=%d", int64(firstID)), nil, f.adminHeader(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = f.do(t, http.MethodGet, "/api/rsvp", nil, f.adminHeader(t))
		body := decode(t, resp)
		require.Equal(t, float64(1), body["total"])
		require.Equal(t, float64(2), body["totalGuests"])
	})
}

// uploadBody builds a multipart form with a file part of the given type.
func uploadBody(t *testing.T, folder, contentType string, data []byte) (*bytes.Buffer, http.Header) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	if data != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="photo"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, http.Header{"Content-Type": {mw.FormDataContentType()}}
}

func (f *fixture) upload(t *testing.T, folder, contentType string, data []byte) *http.Response {
	t.Helper()
	body, h := uploadBody(t, folder, contentType, data)
	for k, v := range f.adminHeader(t) {
		h[k] = v
	}
	return f.do(t, http.MethodPost, "/api/upload", body, h)
}

func TestImageHandlers(t *testing.T) {
	f := newFixture(t)
	png := []byte("\x89PNG\r\n\x1a\nfake image bytes")

	t.Run("upload requires admin", func(t *testing.T) {
		body, h := uploadBody(t, "gallery", "image/png", png)
		resp := f.do(t, http.MethodPost, "/api/upload", body, h)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var key string
	t.Run("upload", func(t *testing.T) {
		resp := f.upload(t, "gallery", "image/png", png)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decode(t, resp)
		key = body["key"].(string)
		require.True(t, strings.HasPrefix(key, "gallery/"), key)
		require.True(t, strings.HasSuffix(key, ".png"), key)
		require.Equal(t, testOrigin+"/api/images/"+key, body["url"])
	})

	t.Run("serve", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/images/"+key, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		require.Equal(t, "public, max-age=31536000, immutable", resp.Header.Get("Cache-Control"))
		etag := resp.Header.Get("ETag")
		require.NotEmpty(t, etag)
		require.Equal(t, string(png), readBody(t, resp))

		resp = f.do(t, http.MethodGet, "/api/images/"+key, nil, http.Header{"If-None-Match": {etag}})
		require.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name        string
			folder      string
			contentType string
			data        []byte
			wantErr     string
		}{
			{"no file", "gallery", "", nil, "No file provided"},
			{"bad folder", "private", "image/png", png, "Invalid folder. Must be 'gallery' or 'events'"},
			{"missing folder", "", "image/png", png, "Invalid folder. Must be 'gallery' or 'events'"},
			{"bad type", "events", "image/svg+xml", png, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF."},
			{"too large", "events", "image/jpeg", bytes.Repeat([]byte("x"), 2048), "File too large. Maximum size is 1.0 KiB."},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				resp := f.upload(t, tc.folder, tc.contentType, tc.data)
				require.Equal(t, http.StatusBadRequest, resp.StatusCode)
				require.Equal(t, tc.wantErr, decode(t, resp)["error"])
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, "/api/upload?key="+key, nil, f.adminHeader(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success":true,"message":"Image deleted"}`, readBody(t, resp))

		resp = f.do(t, http.MethodGet, "/api/images/"+key, nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete key checks", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, "/api/upload", nil, f.adminHeader(t))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Missing key parameter", decode(t, resp)["error"])

		resp = f.do(t, http.MethodDelete, "/api/upload?key=../etc/passwd", nil, f.adminHeader(t))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid key", decode(t, resp)["error"])
	})

	t.Run("unknown image", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/images/gallery/missing.png", nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
