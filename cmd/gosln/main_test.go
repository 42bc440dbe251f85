package main

import "testing"

// TestVersionDefaults ensures version variables are initialized
func TestVersionDefaults(t *testing.T) {
	for name, v := range map[string]string{"version": version, "commit": commit, "date": date, "builtBy": builtBy} {
		if v == "" {
			t.Errorf("%s should have a default value", name)
		}
	}
}
