package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

const censored = "$censored"

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperr.New(apperr.CodeValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.Wrap(apperr.CodeBadRequest, err, "malformed request body")
	}
	if err := c.Validate(v); err != nil {
		return err
	}
	return nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", apperr.New(apperr.CodeBadRequest, fmt.Sprintf("invalid path param '%s'", name))
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, apperr.Wrap(apperr.CodeBadRequest, e, fmt.Sprintf("invalid path param '%s'", name))
	}
	return vv, nil
}

// ErrorHandler renders every error as models.ErrorResp.
func (s *HTTPServer) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := toErrorResp(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

func toErrorResp(err error) (int, models.ErrorResp) {
	if appErr := apperr.As(err); appErr != nil {
		return apperr.HTTPStatus(appErr.Code()), models.ErrorResp{
			Code:    string(appErr.Code()),
			Message: appErr.Message(),
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := apperr.CodeInternal
		switch he.Code {
		case http.StatusBadRequest:
			code = apperr.CodeBadRequest
		case http.StatusUnauthorized:
			code = apperr.CodeUnauthorized
		case http.StatusNotFound:
			code = apperr.CodeNotFound
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusRequestEntityTooLarge:
			code = apperr.CodeBadRequest
		}
		return he.Code, models.ErrorResp{
			Code:    string(code),
			Message: strings.ToLower(http.StatusText(he.Code)),
		}
	}

	return http.StatusInternalServerError, models.ErrorResp{
		Code:    string(apperr.CodeInternal),
		Message: "internal server error",
	}
}

// censorBody hides password values in a JSON body. Non-JSON bodies pass through.
func censorBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}
	out, err := json.Marshal(censorValue(payload))
	if err != nil {
		return body
	}
	return out
}

func censorValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, value := range t {
			if strings.Contains(strings.ToLower(key), "password") {
				t[key] = censored
				continue
			}
			t[key] = censorValue(value)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = censorValue(t[i])
		}
		return t
	default:
		return v
	}
}
