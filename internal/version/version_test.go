package version

import "testing"

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Dirty = v, c, d }(Version, Commit, Dirty)

	cases := []struct {
		version, commit, dirty string
		want                   string
	}{
		{"", "", "", "dev"},
		{"", "abc123", "clean", "dev-abc123"},
		{"", "abc123", "dirty", "dev-abc123*"},
		{"v1.2.3", "abc123", "dirty", "v1.2.3"},
	}
	for _, tc := range cases {
		Version, Commit, Dirty = tc.version, tc.commit, tc.dirty
		if got := String(); got != tc.want {
			t.Fatalf("String() with %+v = %q, want %q", tc, got, tc.want)
		}
	}
}

func TestInfoCarriesVersion(t *testing.T) {
	info := Info()
	if info["version"] != String() {
		t.Fatalf("Info version %q does not match String() %q", info["version"], String())
	}
}
