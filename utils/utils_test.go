// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import "testing"

func TestLowerASCIIFolding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already folded", in: "running", want: "running"},
		{name: "uppercase", in: "RUNNING", want: "running"},
		{name: "accents", in: "Marítim", want: "maritim"},
		{name: "surrounding spaces", in: "  Smooth Asphalt ", want: "smooth asphalt"},
		{name: "catalan", in: "Catalunya", want: "catalunya"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LowerASCIIFolding(tt.in); got != tt.want {
				t.Errorf("LowerASCIIFolding(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		if got := FormatInt(tt.in); got != tt.want {
			t.Errorf("FormatInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
