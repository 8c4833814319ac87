package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a size-limited JSON body into dst and checks its
// validate tags. Field errors are returned keyed by JSON name; err is set
// for bodies that are not JSON at all.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (map[string][]string, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	err := requestValidator.Struct(dst)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fieldErrors := map[string][]string{}
	for _, fe := range verrs {
		name := strings.SplitN(fe.Namespace(), ".", 2)
		field := fe.Field()
		if len(name) == 2 {
			field = name[1]
		}
		fieldErrors[field] = append(fieldErrors[field], "failed "+fe.Tag())
	}
	return fieldErrors, nil
}
