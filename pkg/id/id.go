package id

import (
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gofrs/uuid"
)

// GenTraceID new normal traceID
func GenTraceID() string {
	return foxuuid.New()
}

// SubTraceID derive the trace id of one step of an operation
func SubTraceID(traceID, step string) string {
	return foxuuid.Modify(traceID, step)
}

// Valid non nil uuid
func Valid(id string) bool {
	if _, err := uuid.FromString(id); err != nil {
		return false
	}

	return !foxuuid.IsNil(id)
}
