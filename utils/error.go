package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorToggleInFlight is returned when a presence toggle is attempted while a
// previous toggle for the same (member, date) key is still persisting.
var ErrorToggleInFlight = errors.New("toggle already in flight for this member and date")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
