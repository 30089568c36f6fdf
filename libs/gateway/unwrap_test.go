package gateway

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrapIsShapeAgnostic(t *testing.T) {
	payloads := []string{
		`[{"id":1},{"id":2}]`,
		`{"id":1,"title":"Ngập đường Nguyễn Huệ"}`,
		`[]`,
	}
	for _, x := range payloads {
		shapes := []string{
			x,
			fmt.Sprintf(`{"data":%s}`, x),
			fmt.Sprintf(`{"data":{"data":%s}}`, x),
			fmt.Sprintf(`{"success":true,"message":"ok","data":{"data":%s,"count":2}}`, x),
		}
		for _, shape := range shapes {
			assert.JSONEq(t, x, string(Unwrap(json.RawMessage(shape))), "shape %s", shape)
		}
	}
}

func TestUnwrapLeavesEntitiesWithDataFieldAlone(t *testing.T) {
	entity := `{"id":9,"data":"raw sensor blob","title":"x"}`
	assert.JSONEq(t, entity, string(Unwrap(json.RawMessage(entity))))
}

func TestUnwrapIgnoresEnvelopeMetadata(t *testing.T) {
	want := `[{"id":1,"status":"Pending"}]`
	for _, shape := range []string{
		`{"success":true,"data":[{"id":1,"status":"Pending"}],"pagination":{"page":1,"pageSize":20}}`,
		`{"data":{"data":[{"id":1,"status":"Pending"}],"timestamp":"2026-10-16T09:00:00Z"},"page":1}`,
	} {
		assert.JSONEq(t, want, string(Unwrap(json.RawMessage(shape))), "shape %s", shape)
		assert.JSONEq(t, want, string(UnwrapList(json.RawMessage(shape), "floodReports")), "shape %s", shape)
	}
}

func TestUnwrapListFindsKeyedArrays(t *testing.T) {
	want := `[{"id":1}]`
	for _, shape := range []string{
		want,
		`{"data":[{"id":1}]}`,
		`{"data":{"users":[{"id":1}]}}`,
		`{"data":{"data":{"users":[{"id":1}]}}}`,
		`{"data":{"data":[{"id":1}]}}`,
		`{"users":[{"id":1}]}`,
	} {
		assert.JSONEq(t, want, string(UnwrapList(json.RawMessage(shape), "users")), "shape %s", shape)
	}
}
