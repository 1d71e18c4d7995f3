package rest

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// errorResponse covers both the data API envelope (code/message/details)
// and the auth API envelopes (error/error_description, msg, error_code).
type errorResponse struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorCode        string          `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
}

func (e errorResponse) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	if len(e.Code) > 0 {
		var s string
		if json.Unmarshal(e.Code, &s) == nil {
			return s
		}
		// GoTrue sends the HTTP status as a number here
		var n int
		if json.Unmarshal(e.Code, &n) == nil {
			return strconv.Itoa(n)
		}
	}
	return e.Error
}

func (e errorResponse) message() string {
	for _, m := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// tokenResponse is returned by the token endpoint for every grant type
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	ExpiresAt    int64   `json:"expires_at"`
	RefreshToken string  `json:"refresh_token"`
	User         userDTO `json:"user"`
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
