package util

import (
	"github.com/sirupsen/logrus"
)

// Debug is the highest DPrintf level that gets logged.
var Debug uint64 = 1

// Log is the logger every package in the ramdisk writes to.
var Log = logrus.New()

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		Log.WithField("lvl", level).Infof(format, a...)
	}
}

// Warnf reports a condition the caller is not failed for, such as removing
// something that does not exist.
func Warnf(format string, a ...interface{}) {
	Log.Warnf(format, a...)
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

// returns true if x + y would overflow a uint64
func SumOverflows(x uint64, y uint64) bool {
	return x+y < x
}

// returns true if x * y would overflow a uint64
func MulOverflows(x uint64, y uint64) bool {
	if x == 0 {
		return false
	}
	return x*y/x != y
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
