package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var errInvalidHeaderParameter = errors.New("invalid syntax specified as header parameter")

// ParseHeaderString parses a list of "Key: value" strings into a header map
func ParseHeaderString(customHeaders []string) (http.Header, error) {
	headers := http.Header{}
	for _, keyValueString := range customHeaders {
		keyValue := strings.SplitN(keyValueString, ":", 2)
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("%q: %w", keyValueString, errInvalidHeaderParameter)
		}

		key, value := strings.TrimSpace(keyValue[0]), strings.TrimSpace(keyValue[1])
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("%q: %w", keyValueString, errInvalidHeaderParameter)
		}

		headers.Add(key, value)
	}
	return headers, nil
}
