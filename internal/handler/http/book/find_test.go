package book

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindRequest(t *testing.T) {
	tests := []struct {
		query string
		want  map[string]any
	}{
		{"search=ruby", map[string]any{"search": "ruby"}},
		{"search=ruby&index=2&count=10", map[string]any{"search": "ruby", "index": 2, "count": 10}},
		{"search=ruby&count=-1", map[string]any{"search": "ruby", "count": -1}},
		{"search=ruby&count=ten", map[string]any{"search": "ruby", "count": "ten"}},
		{"search=ruby&index=1.5", map[string]any{"search": "ruby", "index": "1.5"}},
		{"", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/books?"+tt.query, nil)
			if diff := cmp.Diff(tt.want, findRequest(r)); diff != "" {
				t.Fatalf("findRequest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
