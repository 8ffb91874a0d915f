/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strconv"
)

// humanReadableSize formats a byte count with SI units, e.g. "1.2 kB".
func humanReadableSize(bytes int64) string {
	const units = "kMGTPE"

	if bytes < 1000 {
		return strconv.FormatInt(bytes, 10) + " B"
	}

	value := float64(bytes) / 1000
	i := 0
	for value >= 1000 && i < len(units)-1 {
		value /= 1000
		i++
	}

	return strconv.FormatFloat(value, 'f', 1, 64) + " " + units[i:i+1] + "B"
}
