package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidZoom, "zoom %d out of range", 42)
	want := "INVALID_ZOOM: zoom 42 out of range"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := stderrors.New("connection refused")
	wrapped := Wrap(ErrCodeFetchFailed, cause, "failed to fetch tile")
	if got := wrapped.Error(); got != "FETCH_FAILED: failed to fetch tile: connection refused" {
		t.Errorf("wrapped Error() = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(ErrCodeNetwork, cause, "request failed")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if New(ErrCodeInternal, "no cause").Unwrap() != nil {
		t.Error("Unwrap without cause should return nil")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeSnapshotNotFound, "snapshot %s not found", "abc")

	if !Is(err, ErrCodeSnapshotNotFound) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNetwork) {
		t.Error("Is should not match non-structured errors")
	}

	// Matching through wrapping layers
	outer := fmt.Errorf("outer: %w", err)
	if !Is(outer, ErrCodeSnapshotNotFound) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(New(ErrCodeTimeout, "timed out")); code != ErrCodeTimeout {
		t.Errorf("GetCode = %q, want TIMEOUT", code)
	}
	if code := GetCode(stderrors.New("plain")); code != "" {
		t.Errorf("GetCode on plain error = %q, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidBBox, "latMin must be less than latMax")
	if msg := UserMessage(err); msg != "latMin must be less than latMax" {
		t.Errorf("UserMessage = %q", msg)
	}
	if msg := UserMessage(stderrors.New("plain error")); msg != "plain error" {
		t.Errorf("UserMessage on plain error = %q", msg)
	}
}

func TestValidateZoom(t *testing.T) {
	for _, zoom := range []int{0, 10, 20} {
		if err := ValidateZoom(zoom); err != nil {
			t.Errorf("ValidateZoom(%d) = %v, want nil", zoom, err)
		}
	}
	for _, zoom := range []int{-1, 21, 100} {
		err := ValidateZoom(zoom)
		if !Is(err, ErrCodeInvalidZoom) {
			t.Errorf("ValidateZoom(%d) = %v, want INVALID_ZOOM", zoom, err)
		}
	}
}

func TestValidateBBox(t *testing.T) {
	tests := []struct {
		name                           string
		latMin, lonMin, latMax, lonMax float64
		wantErr                        bool
	}{
		{"valid", 45.0, 7.0, 46.0, 8.0, false},
		{"inverted lat", 46.0, 7.0, 45.0, 8.0, true},
		{"inverted lon", 45.0, 8.0, 46.0, 7.0, true},
		{"lat beyond mercator", -89.0, 7.0, 46.0, 8.0, true},
		{"lon out of range", 45.0, -181.0, 46.0, 8.0, true},
		{"zero span", 45.0, 7.0, 45.0, 8.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBBox(tt.latMin, tt.lonMin, tt.latMax, tt.lonMax)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBBox = %v, wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBBox) {
				t.Errorf("error code = %q, want INVALID_BBOX", GetCode(err))
			}
		})
	}
}

func TestValidateOpacity(t *testing.T) {
	for _, o := range []float64{0, 0.5, 1} {
		if err := ValidateOpacity(o); err != nil {
			t.Errorf("ValidateOpacity(%g) = %v", o, err)
		}
	}
	for _, o := range []float64{-0.1, 1.1} {
		if err := ValidateOpacity(o); !Is(err, ErrCodeInvalidLayer) {
			t.Errorf("ValidateOpacity(%g) = %v, want INVALID_LAYER", o, err)
		}
	}
}

func TestValidateURLTemplate(t *testing.T) {
	valid := "https://tile.example.org/{z}/{x}/{y}.png"
	if err := ValidateURLTemplate(valid); err != nil {
		t.Errorf("ValidateURLTemplate(%q) = %v", valid, err)
	}

	invalid := []string{
		"",
		"ftp://tile.example.org/{z}/{x}/{y}.png",
		"https://tile.example.org/{z}/{x}.png",   // missing {y}
		"https://tile.example.org/tiles/all.png", // no placeholders
	}
	for _, tmpl := range invalid {
		if err := ValidateURLTemplate(tmpl); !Is(err, ErrCodeInvalidLayer) {
			t.Errorf("ValidateURLTemplate(%q) = %v, want INVALID_LAYER", tmpl, err)
		}
	}
}
