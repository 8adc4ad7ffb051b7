package main

import "testing"

func TestResolveString(t *testing.T) {
	const envKey = "DEMOSHELF_TEST_RESOLVE"

	cases := []struct {
		name      string
		flagValue string
		envValue  string
		want      string
	}{
		{name: "flag wins", flagValue: ":9090", envValue: ":7070", want: ":9090"},
		{name: "env when flag empty", flagValue: "", envValue: ":7070", want: ":7070"},
		{name: "fallback when both empty", flagValue: "", envValue: "", want: ":8080"},
		{name: "whitespace flag ignored", flagValue: "   ", envValue: ":7070", want: ":7070"},
		{name: "whitespace env ignored", flagValue: "", envValue: "   ", want: ":8080"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(envKey, tc.envValue)
			if got := resolveString(tc.flagValue, envKey, ":8080"); got != tc.want {
				t.Fatalf("resolveString = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveBool(t *testing.T) {
	const envKey = "DEMOSHELF_TEST_RESOLVE_BOOL"

	cases := []struct {
		name      string
		flagValue bool
		envValue  string
		want      bool
	}{
		{name: "flag wins", flagValue: true, envValue: "false", want: true},
		{name: "env true", flagValue: false, envValue: "true", want: true},
		{name: "env one", flagValue: false, envValue: "1", want: true},
		{name: "env false", flagValue: false, envValue: "false", want: false},
		{name: "unset", flagValue: false, envValue: "", want: false},
		{name: "invalid env", flagValue: false, envValue: "banana", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(envKey, tc.envValue)
			if got := resolveBool(tc.flagValue, envKey); got != tc.want {
				t.Fatalf("resolveBool = %v, want %v", got, tc.want)
			}
		})
	}
}
