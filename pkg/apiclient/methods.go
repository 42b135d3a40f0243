package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Query holds request query parameters. Nil and empty values are skipped, so
// callers can pass optional filters without pre-pruning.
type Query map[string]any

func (q Query) values() url.Values {
	if len(q) == 0 {
		return nil
	}
	out := url.Values{}
	for k, v := range q {
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		out.Set(k, s)
	}
	return out
}

func Get[T any](ctx context.Context, c *Client, path string, params Query) (*Response[T], error) {
	raw, _, err := c.Do(ctx, http.MethodGet, path, params.values(), nil, "")
	if err != nil {
		return nil, err
	}
	return decode[T](raw)
}

func Post[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return withBody[T](ctx, c, http.MethodPost, path, body)
}

func Put[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return withBody[T](ctx, c, http.MethodPut, path, body)
}

func Patch[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return withBody[T](ctx, c, http.MethodPatch, path, body)
}

func Delete[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	raw, _, err := c.Do(ctx, http.MethodDelete, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return decode[T](raw)
}

// PostForm uploads a file plus form fields as multipart/form-data.
func PostForm[T any](ctx context.Context, c *Client, path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Response[T], error) {
	return withForm[T](ctx, c, http.MethodPost, path, fields, fileField, fileName, file)
}

func PatchForm[T any](ctx context.Context, c *Client, path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Response[T], error) {
	return withForm[T](ctx, c, http.MethodPatch, path, fields, fileField, fileName, file)
}

func withBody[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}
	raw, _, err := c.Do(ctx, method, path, nil, payload, "")
	if err != nil {
		return nil, err
	}
	return decode[T](raw)
}

func withForm[T any](ctx context.Context, c *Client, method, path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Response[T], error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("encode form field %s: %w", k, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("copy form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	raw, _, err := c.Do(ctx, method, path, nil, b.Bytes(), w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decode[T](raw)
}

func decode[T any](raw []byte) (*Response[T], error) {
	var env Response[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}
