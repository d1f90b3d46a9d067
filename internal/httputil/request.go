package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestHost returns the host the request was made against, taking the
// x-forwarded-proto, x-forwarded-host and x-forwarded-prefix headers of a
// reverse proxy into account.
func RequestHost(c *gin.Context) string {
	scheme := "http"
	if c.Request.Header.Get("x-forwarded-proto") == "https" {
		scheme = "https"
	}

	host := c.Request.Host
	var forwardedPrefix string

	xForwardedHost := c.Request.Header.Get("x-forwarded-host")
	if xForwardedHost != "" {
		host = xForwardedHost

		forwardedPrefix = c.Request.Header.Get("x-forwarded-prefix")
		if forwardedPrefix == "" {
			forwardedPrefix = "/api"
		}
	}

	return scheme + "://" + host + forwardedPrefix
}

// RequestURL returns the full request URL.
func RequestURL(c *gin.Context) string {
	return RequestHost(c) + c.Request.URL.Path
}

// UUIDFromString parses an ID from the URL path.
func UUIDFromString(s string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// BindData binds the JSON request body to the struct passed in.
func BindData(c *gin.Context, data any) error {
	err := c.ShouldBindJSON(data)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrRequestBodyEmpty
		}

		log.Debug().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return ErrInvalidBody
	}

	return nil
}

// GetBodyFields returns the names of the model's struct fields whose JSON
// keys are present in the request body. This is how PATCH requests
// distinguish "set this field to its zero value" from "leave it alone".
// The body is restored so that a later BindData sees it again.
func GetBodyFields(c *gin.Context, model any) ([]string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, ErrInvalidBody
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var raw map[string]json.RawMessage
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, ErrInvalidBody
	}

	var fields []string
	t := reflect.TypeOf(model)
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if _, ok := raw[tag]; ok {
			fields = append(fields, t.Field(i).Name)
		}
	}

	return fields, nil
}
