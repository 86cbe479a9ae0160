// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	got := SanitizeLogValue("alice\n{\"level\":\"error\"}\r\x00")
	if strings.ContainsAny(got, "\n\r\x00") {
		t.Errorf("control characters not stripped: %q", got)
	}
	if got != `alice{"level":"error"}` {
		t.Errorf("unexpected result %q", got)
	}
}

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***"},
	}
	for _, tt := range tests {
		if got := SanitizeEmail(tt.in); got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("token", "abcdefghijklmnopqrstuvwxyz"); got != "abcd...wxyz" {
		t.Errorf("token not masked: %q", got)
	}
	if got := SanitizeValue("path", "/admin/movies"); got != "/admin/movies" {
		t.Errorf("plain value changed: %q", got)
	}
}

func TestSecurityLogger_LoginFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sl := NewSecurityLoggerWithLogger(NewTestLogger(&buf))
	sl.LogLoginFailure("jane.doe@example.com", "LOCAL", "10.0.0.1", "invalid credentials\nforged")

	out := buf.String()
	for _, want := range []string{
		`"event":"login_failed"`,
		`"status":"failed"`,
		`"email":"ja***@example.com"`,
		`"component":"security"`,
		`"reason":"invalid credentialsforged"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestSecurityLogger_AdminBearerRejected(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sl := NewSecurityLoggerWithLogger(NewTestLogger(&buf))
	sl.LogAdminBearerRejected("192.0.2.4", "/api/admin/tmdb/search")

	out := buf.String()
	if !strings.Contains(out, `"path":"/api/admin/tmdb/search"`) {
		t.Errorf("missing path: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("failures should log at warn: %s", out)
	}
}
