package rest

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/query"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// fieldError is a body value that is missing or does not match its field type
type fieldError struct {
	key    string
	reason string
}

func (e *fieldError) Error() string {
	if e.key == "" {
		return e.reason
	}
	return fmt.Sprintf("%s: %s", e.key, e.reason)
}

// decodeBody reads a JSON object from the request body. An empty body is an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return map[string]interface{}{}, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &fieldError{reason: "body could not be read"}
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]interface{}{}, nil
	}

	v, err := schema.DecodeJSON(data)
	if err != nil {
		return nil, &fieldError{reason: "body is not valid JSON"}
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &fieldError{reason: "body is not a JSON object"}
	}
	return obj, nil
}

// checkWritable type checks the writable fields of the body. It returns the
// present values keyed by internal name. Keys outside the writable set are
// left to checkKeys.
func (h *handler) checkWritable(body map[string]interface{}) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(h.writable))
	for _, wf := range h.writable {
		key := wf.Field.ExternalName()
		raw, present := body[key]

		switch {
		case !present:
			if !wf.Optional {
				return nil, &fieldError{key: key, reason: "missing"}
			}
		case raw == nil:
			if !wf.Field.Optional {
				return nil, &fieldError{key: key, reason: "must not be null"}
			}
			values[wf.Field.Name] = nil
		default:
			v, ok := wf.Field.Type.Check(raw)
			if !ok {
				return nil, &fieldError{key: key, reason: "expected " + wf.Field.Type.String()}
			}
			values[wf.Field.Name] = v
		}
	}
	return values, nil
}

// keyCheck is the outcome of checkKeys
type keyCheck struct {
	// unknown is the first key that cannot be written
	unknown string
	// overlap lists the keys of fields bound by the path
	overlap []string
}

// checkKeys finds body keys that address no writable field. Keys of public,
// non-auto fields bound in bound are reported in overlap whatever their value.
func (h *handler) checkKeys(body map[string]interface{}, bound map[string]interface{}) keyCheck {
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var res keyCheck
	for _, key := range keys {
		name, err := query.ResolveExternalName(key, h.resource)
		if err != nil {
			res.unknown = key
			return res
		}
		field := h.resource.Fields[name]

		if _, isBound := bound[name]; isBound && field.Public && !field.Auto {
			res.overlap = append(res.overlap, key)
			continue
		}
		if !field.Writable() {
			res.unknown = key
			return res
		}
	}
	return res
}

func tooManyParameters(w http.ResponseWriter, msg, key string) {
	response.BadRequest(w, msg, map[string]interface{}{
		"description": (&query.UnknownFieldError{Name: key}).Error(),
	})
}
