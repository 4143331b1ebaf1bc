package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	v1 "github.com/ardanlabs/powrace/business/web/v1"
)

var client = http.Client{Timeout: 10 * time.Second}

// get calls the node and decodes the response into v.
func get(path string, v any) error {
	return call(http.MethodGet, path, nil, v)
}

// post sends body as JSON to the node and decodes the response into v.
func post(path string, body any, v any) error {
	return call(http.MethodPost, path, body, v)
}

func call(method string, path string, body any, v any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(url, "/")+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er v1.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}
		for field, msg := range er.Fields {
			er.Error += fmt.Sprintf(", %s: %s", field, msg)
		}
		return fmt.Errorf("%s", er.Error)
	}

	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
