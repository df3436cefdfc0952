package cli

import "testing"

func TestSetVersion(t *testing.T) {
	restore := func(v, c, d string) func() {
		return func() { version, commit, date = v, c, d }
	}(version, commit, date)
	defer restore()

	cases := []struct {
		name                  string
		version, commit, date string
	}{
		{"release build", "0.3.1", "9f2c1aa", "2026-08-30"},
		{"dev build", "dev", "none", "unknown"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			SetVersion(c.version, c.commit, c.date)
			if version != c.version || commit != c.commit || date != c.date {
				t.Errorf("SetVersion(%q, %q, %q) stored (%q, %q, %q)",
					c.version, c.commit, c.date, version, commit, date)
			}
		})
	}
}
