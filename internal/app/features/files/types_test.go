package files

import (
	"encoding/json"
	"testing"

	"github.com/fileharbor/fileharbor/internal/domain/models"
)

func TestParentID_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"number zero", `{"parentId": 0}`, models.RootParentID},
		{"quoted zero", `{"parentId": "0"}`, models.RootParentID},
		{"null", `{"parentId": null}`, models.RootParentID},
		{"absent", `{}`, ""},
		{"hex string", `{"parentId": "5f1e881cc7ba06511e683b23"}`, "5f1e881cc7ba06511e683b23"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in CreateRequest
			if err := json.Unmarshal([]byte(tc.in), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if string(in.ParentID) != tc.want {
				t.Errorf("ParentID = %q, want %q", in.ParentID, tc.want)
			}
		})
	}
}

func TestParentID_Marshal(t *testing.T) {
	b, err := json.Marshal(ParentID(models.RootParentID))
	if err != nil {
		t.Fatalf("marshal root: %v", err)
	}
	if string(b) != "0" {
		t.Errorf("root marshals as %s, want the bare number 0", b)
	}

	b, err = json.Marshal(ParentID("5f1e881cc7ba06511e683b23"))
	if err != nil {
		t.Fatalf("marshal hex: %v", err)
	}
	if string(b) != `"5f1e881cc7ba06511e683b23"` {
		t.Errorf("hex id marshals as %s, want a quoted string", b)
	}
}
