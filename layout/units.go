package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length values.
// The scene language is pixel-first: bare numbers mean pixels, physical
// units are converted through DPI when a vector backend needs them.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as pixels
	UnitPX               // pixels
	UnitPT               // points
	UnitMM               // millimeters
	UnitIN               // inches
)

// DefaultDPI 用于像素与物理单位之间的换算。
const DefaultDPI = 72.0

// Conversion constants between pt, mm and inch.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
	InToPt = 72.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	case UnitNone:
		return ""
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPx converts this length to pixels at the given DPI.
// Unit-less values are already pixels.
func (l Length) ToPx(dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch l.Unit {
	case UnitPX, UnitNone:
		return l.Value
	case UnitPT:
		return l.Value / InToPt * dpi
	case UnitMM:
		return l.Value / InToMm * dpi
	case UnitIN:
		return l.Value * dpi
	}
	return l.Value
}

// ToMm converts this length to millimeters at the given DPI.
// 矢量输出（PDF）以 mm 为坐标单位时使用。
func (l Length) ToMm(dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch l.Unit {
	case UnitPX, UnitNone:
		return l.Value / dpi * InToMm
	case UnitPT:
		return l.Value * PtToMm
	case UnitMM:
		return l.Value
	case UnitIN:
		return l.Value * InToMm
	}
	return l.Value
}

// ParseLengthStr parses a DSL length string preserving its unit.
func ParseLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}
