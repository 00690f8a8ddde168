package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lending-library/internal/domain/entity"
)

// DecodeObject reads a JSON object from the request body. Numbers stay
// json.Number so the validator sees the literal value.
func DecodeObject(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, entity.Errors{entity.NewError(entity.CodeBadReq, "", "request body too large")}
		case errors.Is(err, io.EOF):
			return nil, entity.Errors{entity.NewError(entity.CodeBadReq, "", "request body is empty")}
		default:
			return nil, entity.Errors{entity.NewError(entity.CodeBadReq, "", "request body must be a JSON object")}
		}
	}
	if v == nil {
		return nil, entity.Errors{entity.NewError(entity.CodeBadReq, "", "request body must be a JSON object")}
	}
	return v, nil
}
