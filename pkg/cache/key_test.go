package cache

import (
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "full key",
			key: Key{
				Query:    `{"elements":"O"}`,
				Phases:   "1,2,3",
				Page:     0,
				PageSize: 1000,
			},
			want: `mpds:facet:q={"elements":"O"}:phases=1,2,3:page=0:pagesize=1000`,
		},
		{
			name: "no phase filter",
			key: Key{
				Query:    `{"props":"band gap"}`,
				Page:     4,
				PageSize: 10,
			},
			want: `mpds:facet:q={"props":"band gap"}:phases=:page=4:pagesize=10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{Query: `{"elements":"O"}`, Phases: "5,6", Page: 1, PageSize: 1000}
	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("Key.String() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestKey_DistinguishesPages(t *testing.T) {
	base := Key{Query: `{"elements":"O"}`, Page: 0, PageSize: 1000}
	other := base
	other.Page = 1

	if base.String() == other.String() {
		t.Error("keys for different pages collide")
	}
}
