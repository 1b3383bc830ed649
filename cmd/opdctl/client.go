package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

// apiClient is a thin HTTP client for the OPD API
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) listDoctors() ([]*entities.Doctor, error) {
	var doctors []*entities.Doctor
	err := c.do(http.MethodGet, "/api/doctors", nil, &doctors)
	return doctors, err
}

func (c *apiClient) getQueue(doctorID string) ([]*entities.Token, error) {
	var queue []*entities.Token
	err := c.do(http.MethodGet, "/api/doctors/"+doctorID+"/queue", nil, &queue)
	return queue, err
}

func (c *apiClient) issueToken(doctorID, source, patientName string) (*entities.Token, error) {
	var token entities.Token
	err := c.do(http.MethodPost, "/api/tokens/issue", map[string]string{
		"doctorId":    doctorID,
		"source":      source,
		"patientName": patientName,
	}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *apiClient) cancelToken(tokenID string) (*entities.Token, error) {
	var resp struct {
		Message string          `json:"message"`
		Token   *entities.Token `json:"token"`
	}
	err := c.do(http.MethodPatch, "/api/tokens/"+tokenID+"/cancel", nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Token, nil
}

func (c *apiClient) addDelay(doctorID string, minutes int) error {
	return c.do(http.MethodPost, "/api/doctors/"+doctorID+"/delay", map[string]int{
		"delayMinutes": minutes,
	}, nil)
}
