package errors

import "strings"

// Zoom limits for the standard slippy-map tiling scheme.
const (
	ZoomMin = 0
	ZoomMax = 20
)

// ValidateZoom validates an integer zoom level against the slippy-map range.
func ValidateZoom(zoom int) error {
	if zoom < ZoomMin || zoom > ZoomMax {
		return New(ErrCodeInvalidZoom, "zoom %d out of range [%d, %d]", zoom, ZoomMin, ZoomMax)
	}
	return nil
}

// ValidateBBox validates geographic bounds in degrees.
// Longitude order must be min < max; latitude order must be min < max.
// Latitudes are limited to the Web-Mercator projectable range.
func ValidateBBox(latMin, lonMin, latMax, lonMax float64) error {
	const mercatorLatLimit = 85.0511
	if latMin < -mercatorLatLimit || latMax > mercatorLatLimit {
		return New(ErrCodeInvalidBBox, "latitude out of Web-Mercator range [%g, %g]", -mercatorLatLimit, mercatorLatLimit)
	}
	if lonMin < -180 || lonMax > 180 {
		return New(ErrCodeInvalidBBox, "longitude out of range [-180, 180]")
	}
	if latMin >= latMax {
		return New(ErrCodeInvalidBBox, "latMin (%g) must be less than latMax (%g)", latMin, latMax)
	}
	if lonMin >= lonMax {
		return New(ErrCodeInvalidBBox, "lonMin (%g) must be less than lonMax (%g)", lonMin, lonMax)
	}
	return nil
}

// ValidateOpacity validates a layer opacity value.
func ValidateOpacity(opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return New(ErrCodeInvalidLayer, "opacity %g out of range [0, 1]", opacity)
	}
	return nil
}

// ValidateURLTemplate validates a tile URL template for safety and completeness.
// The template must use http or https and contain all three of the {x}, {y}
// and {z} placeholders. Substitution itself never validates (a template with
// no placeholder silently produces the same URL for every tile); this check
// is the boundary guardrail for manifests, CLI flags, and API requests.
func ValidateURLTemplate(tmpl string) error {
	if tmpl == "" {
		return New(ErrCodeInvalidLayer, "URL template cannot be empty")
	}
	if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
		return New(ErrCodeInvalidLayer, "URL template must use http or https scheme")
	}
	for _, ph := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(tmpl, ph) {
			return New(ErrCodeInvalidLayer, "URL template missing %s placeholder", ph)
		}
	}
	return nil
}
