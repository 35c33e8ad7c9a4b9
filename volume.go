package denonavr

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// muteLevel is the encoded value the receiver reports at minimum volume
	muteLevel = 99

	mainMinDB   = -80.0
	mainMaxDB   = 16.0
	mainDBRange = mainMaxDB - mainMinDB

	zoneMaxLevel = 98

	// volumeTolerance is how close two levels must be to count as equal
	volumeTolerance = 1e-3
)

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func checkLevel(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return fmt.Errorf("%w: %v", ErrVolumeRange, level)
	}
	return nil
}

// EncodeMainVolume converts a level in [0, 1] to the digits of an MV
// command.  The level is rounded to the nearest half dB.  Whole dB values
// use the two digit form and half dB values the three digit form.
func EncodeMainVolume(level float64) (string, error) {
	if err := checkLevel(level); err != nil {
		return "", err
	}
	db := math.Round((level*mainDBRange+mainMinDB)*2) / 2
	value := int(math.Round((db - mainMinDB) * 10))
	if value%10 != 0 {
		return fmt.Sprintf("%03d", value), nil
	}
	return fmt.Sprintf("%02d", value/10), nil
}

// DecodeMainVolume converts the digits following MV in a volume report back
// to a level in [0, 1]
func DecodeMainVolume(digits string) (float64, error) {
	if !allDigits(digits) || len(digits) < 2 || len(digits) > 3 {
		return 0, fmt.Errorf("%w: main volume %q", ErrInvalidResponse, digits)
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: main volume %q", ErrInvalidResponse, digits)
	}
	if digits == strconv.Itoa(muteLevel) {
		return 0, nil
	}

	db := float64(value)
	if len(digits) == 3 {
		db /= 10
	}
	db += mainMinDB
	if db < mainMinDB || db > mainMaxDB {
		return 0, fmt.Errorf("%w: main volume %.1fdB outside [%.0f, %.0f]", ErrInvalidResponse, db, mainMinDB, mainMaxDB)
	}
	return (db - mainMinDB) / mainDBRange, nil
}

// EncodeZoneVolume converts a level in [0, 1] to the two digits of a zone
// volume command
func EncodeZoneVolume(level float64) (string, error) {
	if err := checkLevel(level); err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d", int(math.Round(level*zoneMaxLevel))), nil
}

// DecodeZoneVolume converts the digits of a zone volume report to a level
// in [0, 1]
func DecodeZoneVolume(digits string) (float64, error) {
	if !allDigits(digits) || len(digits) != 2 {
		return 0, fmt.Errorf("%w: zone volume %q", ErrInvalidResponse, digits)
	}
	value, err := strconv.Atoi(digits)
	if err != nil || (value > zoneMaxLevel && value != muteLevel) {
		return 0, fmt.Errorf("%w: zone volume %q", ErrInvalidResponse, digits)
	}
	if value == muteLevel {
		return 0, nil
	}
	return float64(value) / zoneMaxLevel, nil
}

func sameLevel(a, b float64) bool {
	return math.Abs(a-b) < volumeTolerance
}
