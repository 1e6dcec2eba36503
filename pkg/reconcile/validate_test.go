package reconcile

import (
	"testing"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

var linuxEnv = requirement.Environment{
	"os_name":                        "posix",
	"sys_platform":                   "linux",
	"platform_system":                "Linux",
	"platform_machine":               "x86_64",
	"python_version":                 "3.11",
	"python_full_version":            "3.11.0",
	"implementation_name":            "cpython",
	"platform_python_implementation": "CPython",
}

func mustReqs(t *testing.T, lines ...string) map[string]requirement.Requirement {
	t.Helper()
	reqs, err := requirement.ParseLines(lines, requirement.DefaultIgnore)
	if err != nil {
		t.Fatalf("ParseLines(%q): %v", lines, err)
	}
	return reqs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		declared []string
		locked   []string
		unsafe   []string
		wantCode errors.Code
	}{
		{
			name:     "pin inside declared range",
			declared: []string{"requests>=2.0,<3.0"},
			locked:   []string{"requests==2.31.0"},
		},
		{
			name:     "pin below declared range",
			declared: []string{"requests>=2.0,<3.0"},
			locked:   []string{"requests==1.5.0"},
			wantCode: errors.ErrCodeVersionMismatch,
		},
		{
			name:     "pin above declared range",
			declared: []string{"werkzeug<3.0"},
			locked:   []string{"werkzeug==3.0.1"},
			wantCode: errors.ErrCodeVersionMismatch,
		},
		{
			name:     "marker false for environment skips entry",
			declared: []string{`pywin32>=300; sys_platform == "win32"`},
			locked:   []string{},
		},
		{
			name:     "unsafe package exempt even when absent from lock",
			declared: []string{"setuptools>=40", "requests>=2.0"},
			locked:   []string{"requests==2.31.0"},
			unsafe:   []string{"pip", "setuptools", "distribute"},
		},
		{
			name:     "unsafe list canonicalized before comparison",
			declared: []string{"my-package>=1.0"},
			locked:   []string{},
			unsafe:   []string{"My_Package"},
		},
		{
			name:     "prerelease pin satisfies range",
			declared: []string{"grpcio>=1.9,<2.1"},
			locked:   []string{"grpcio==2.0rc1"},
		},
		{
			name:     "declared package missing from lock",
			declared: []string{"boto3>=1.26"},
			locked:   []string{"requests==2.31.0"},
			wantCode: errors.ErrCodeMissingFromLock,
		},
		{
			name:     "unconstrained declaration accepts any pin",
			declared: []string{"acme-client"},
			locked:   []string{"acme-client==2.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared := mustReqs(t, tt.declared...)
			locked := mustReqs(t, tt.locked...)
			err := Validate(locked, declared, tt.unsafe, linuxEnv)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want code %s", tt.wantCode)
			}
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestValidateMalformedLockEntry(t *testing.T) {
	declared := mustReqs(t, "boto3>=1.0")
	locked := mustReqs(t, "boto3>=1.0,<2.0")
	err := Validate(locked, declared, nil, linuxEnv)
	if !errors.Is(err, errors.ErrCodeMalformedLock) {
		t.Fatalf("Validate() = %v, want code %s", err, errors.ErrCodeMalformedLock)
	}
}
