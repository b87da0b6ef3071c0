package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
)

// ErrorInfo describes a categorized probe failure
type ErrorInfo struct {
	Category    string `json:"category"`
	StatusCode  int    `json:"statusCode,omitempty"`
	Message     string `json:"message"`
	UserMessage string `json:"userMessage"`
}

var userMessages = map[string]string{
	CategoryAuthFailure:      "Authentication failed. Check the API key.",
	CategoryModelNotFound:    "Model not found. Check the model name.",
	CategoryRateLimit:        "Rate limit exceeded. Try again later.",
	CategoryNetworkError:     "Network error: unable to reach the API.",
	CategoryTimeout:          "The request timed out.",
	CategoryServerError:      "The provider returned a server error.",
	CategoryEndpointNotFound: "API endpoint not found. Check the base URL.",
	CategoryUnknown:          "An unknown error occurred.",
}

// CategorizeStatus maps an HTTP status and body to a category.
// A 404 mentioning "model" is a missing model, any other 404 a wrong endpoint.
func CategorizeStatus(statusCode int, body string) string {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CategoryAuthFailure
	case http.StatusNotFound:
		if strings.Contains(strings.ToLower(body), "model") {
			return CategoryModelNotFound
		}
		return CategoryEndpointNotFound
	case http.StatusTooManyRequests:
		return CategoryRateLimit
	}
	if statusCode >= http.StatusInternalServerError {
		return CategoryServerError
	}
	return CategoryUnknown
}

// CategorizeError inspects an error returned by a chat request
func CategorizeError(err error) ErrorInfo {
	info := ErrorInfo{Category: CategoryUnknown}
	if err != nil {
		info.Message = err.Error()
	}

	var apiErr *openai.Error
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case err == nil:
	case errors.As(err, &apiErr):
		info.StatusCode = apiErr.StatusCode
		info.Category = CategorizeStatus(apiErr.StatusCode, apiErr.Message+" "+apiErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		info.Category = CategoryTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		info.Category = CategoryTimeout
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		info.Category = CategoryNetworkError
	}

	info.UserMessage = UserMessage(info.Category)
	if info.Message == "" {
		info.Message = info.UserMessage
	}
	return info
}

// UserMessage returns the readable message for a category
func UserMessage(category string) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}
