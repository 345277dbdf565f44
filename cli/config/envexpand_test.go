package config

import (
	"testing"
)

func TestExpandEnv_SetVar(t *testing.T) {
	t.Setenv("TEST_VAR", "hello")

	got := ExpandEnv("value: ${TEST_VAR}")
	want := "value: hello"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_UnsetVar(t *testing.T) {
	got := ExpandEnv("value: ${UNSET_VAR_12345}")
	want := "value: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenUnset(t *testing.T) {
	got := ExpandEnv("value: ${UNSET_VAR_12345:-fallback}")
	want := "value: fallback"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultIgnoredWhenSet(t *testing.T) {
	t.Setenv("TEST_VAR", "real")

	got := ExpandEnv("value: ${TEST_VAR:-fallback}")
	want := "value: real"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenEmpty(t *testing.T) {
	t.Setenv("TEST_VAR", "")

	got := ExpandEnv("value: ${TEST_VAR:-fallback}")
	want := "value: fallback"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_MultipleVars(t *testing.T) {
	t.Setenv("USER_A", "alice")
	t.Setenv("USER_B", "bob")

	got := ExpandEnv("${USER_A}:${USER_B}")
	want := "alice:bob"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_NoVars(t *testing.T) {
	input := "no variables here"
	got := ExpandEnv(input)
	if got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestExpandEnv_NestedInYAML(t *testing.T) {
	t.Setenv("SPLIMER_HOOK", "https://hooks.example.com/x")
	t.Setenv("SPLIMER_TOKEN", "secret")

	input := `notify:
  type: webhook
  url: ${SPLIMER_HOOK}
  headers:
    Authorization: Bearer ${SPLIMER_TOKEN}`

	got := ExpandEnv(input)
	want := `notify:
  type: webhook
  url: https://hooks.example.com/x
  headers:
    Authorization: Bearer secret`

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
