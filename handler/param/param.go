package param

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
	decoder.ZeroEmpty(true)
	decoder.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(t)
	})
}

// Binding decodes the query of GET requests or the json body of the others into v,
// then runs the valid tags of v
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet {
		if err := decoder.Decode(v, r.URL.Query()); err != nil {
			return errors.Wrap(err, "decode query")
		}
	} else if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
			return errors.Wrap(err, "decode body")
		}
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// Int64 url param as int64
func Int64(r *http.Request, key string) (int64, error) {
	return cast.ToInt64E(chi.URLParam(r, key))
}

// Uint64 url param as uint64
func Uint64(r *http.Request, key string) (uint64, error) {
	return cast.ToUint64E(chi.URLParam(r, key))
}
