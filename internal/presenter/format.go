package presenter

import "strings"

// LengthPlaceholder is shown for length values that are not plain digits.
const LengthPlaceholder = "-"

// FormatLength converts a millimetre digit string to whole metres, truncating,
// with an " m" suffix. Anything else, including the empty string, renders as
// LengthPlaceholder.
func FormatLength(v string) string {
	if v == "" || strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return LengthPlaceholder
	}
	// Integer division by 1000 drops the last three digits.
	whole := "0"
	if len(v) > 3 {
		whole = strings.TrimLeft(v[:len(v)-3], "0")
		if whole == "" {
			whole = "0"
		}
	}
	return whole + " m"
}

// Amenity is one facility flag column of the amenities dataset.
type Amenity struct {
	Code  string
	Label string
}

// Amenities lists the facility flags in display order.
var Amenities = []Amenity{
	{Code: "EL", Label: "엘리베이터"},
	{Code: "WL", Label: "휠체어리프트"},
	{Code: "PARKING", Label: "주차장"},
	{Code: "BICYCLE", Label: "자전거보관소"},
	{Code: "CIM", Label: "무인민원발급기"},
	{Code: "EXCHANGE", Label: "환전소"},
	{Code: "TRAIN", Label: "열차매표"},
	{Code: "CULTURE", Label: "문화공간"},
	{Code: "PLACE", Label: "유휴공간"},
	{Code: "FDROOM", Label: "수유실"},
}

// FlagPresent marks an amenity as available.
const FlagPresent = "Y"

// AvailableAmenities returns the labels of every amenity flagged present in r.
func AvailableAmenities(r map[string]string) []string {
	var out []string
	for _, a := range Amenities {
		if r[a.Code] == FlagPresent {
			out = append(out, a.Label)
		}
	}
	return out
}
