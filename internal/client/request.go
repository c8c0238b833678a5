package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Params holds the query string filters of a request. A nil Params sends no query string.
//
// Values may be strings, bools, numbers, time.Time (sent as YYYY-MM-DD), fmt.Stringers, types
// based on string such as ModerationStatus, pointers to any of these, or slices of them (the key
// is repeated). Nil values and nil pointers are skipped.
type Params map[string]any

// with returns a copy of p with the extra values set (p is not modified)
func (p Params) with(extra Params) Params {
	out := make(Params, len(p)+len(extra))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (p Params) encode() (string, error) {
	if len(p) == 0 {
		return "", nil
	}

	q := url.Values{}
	for key, value := range p {
		if err := addParam(q, key, value); err != nil {
			return "", err
		}
	}
	return q.Encode(), nil
}

func addParam(q url.Values, key string, value any) error {
	if value == nil {
		return nil
	}
	// before the type switch: a nil *T whose String has a value receiver panics when called
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return addParam(q, key, rv.Elem().Interface())
	}

	switch v := value.(type) {
	case string:
		q.Add(key, v)
	case bool:
		q.Add(key, strconv.FormatBool(v))
	case int:
		q.Add(key, strconv.Itoa(v))
	case int64:
		q.Add(key, strconv.FormatInt(v, 10))
	case float64:
		q.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		q.Add(key, v.Format(time.DateOnly))
	case []string:
		for _, s := range v {
			q.Add(key, s)
		}
	case fmt.Stringer:
		q.Add(key, v.String())
	default:
		switch rv.Kind() {
		case reflect.String:
			q.Add(key, rv.String())
		case reflect.Bool:
			q.Add(key, strconv.FormatBool(rv.Bool()))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			q.Add(key, strconv.FormatInt(rv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			q.Add(key, strconv.FormatUint(rv.Uint(), 10))
		case reflect.Float32, reflect.Float64:
			q.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits()))
		case reflect.Slice, reflect.Array:
			for i := range rv.Len() {
				if err := addParam(q, key, rv.Index(i).Interface()); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unsupported type %T for query parameter %q", value, key)
		}
	}
	return nil
}

// Form is a multipart/form-data body, used by endpoints that accept file uploads.
// Fields are sent in the order they were added.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	content         io.Reader
}

// NewForm returns an empty multipart form
func NewForm() *Form {
	return &Form{}
}

// Set adds a text field
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile adds a file part. The content is read when the request is sent.
func (f *Form) AddFile(field, filename string, content io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", file.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

type request struct {
	method string
	path   string
	query  Params
	body   any // nil, *Form or a value encoded as JSON
	binary bool
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	query, err := r.query.encode()
	if err != nil {
		return nil, NewRequestError(err, "encoding query parameters")
	}

	u := c.baseURL + r.path
	if query != "" {
		u += "?" + query
	}

	var (
		body        io.Reader
		contentType string
	)
	switch b := r.body.(type) {
	case nil:
	case *Form:
		body, contentType, err = b.encode()
		if err != nil {
			return nil, NewRequestError(err, "encoding multipart form")
		}
	default:
		if err := c.validatePayload(b); err != nil {
			return nil, err
		}
		data, err := json.Marshal(b)
		if err != nil {
			return nil, NewRequestError(err, fmt.Sprintf("encoding %s %s request body", r.method, r.path))
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, NewRequestError(err, fmt.Sprintf("creating %s %s request", r.method, r.path))
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.binary {
		req.Header.Set("Accept", "*/*")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}
	}

	return req, nil
}

// do sends the request and returns the response body of a 2xx response.
// Every failure is returned as an *APIError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := drain(res.Body)
		apiErr := NewServerError(res.StatusCode, body)

		if res.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				c.logger.Warn("could not clear rejected tokens", slog.String("error", err.Error()))
			}
		}

		c.logger.Debug("api error response",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.String("detail", apiErr.LogMessage()),
		)
		return nil, apiErr
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("reading response body: %w", err))
	}
	return body, nil
}

// call performs a JSON request and returns the response body verbatim (nil for an empty body)
func (c *Client) call(ctx context.Context, method, path string, query Params, body any) (json.RawMessage, error) {
	data, err := c.do(ctx, request{method: method, path: path, query: query, body: body})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func (c *Client) get(ctx context.Context, path string, query Params) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPatch, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

// download fetches a binary payload and delivers it to the user as the named file.
// It returns true once the file has been written.
func (c *Client) download(ctx context.Context, path string, query Params, filename string) (bool, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, binary: true})
	if err != nil {
		return false, err
	}

	saved, err := c.downloads.Save(filename, data)
	if err != nil {
		return false, NewRequestError(err, fmt.Sprintf("saving %s", filename))
	}

	c.logger.Info("file downloaded", slog.String("file", saved), slog.Int("bytes", len(data)))
	return true, nil
}
