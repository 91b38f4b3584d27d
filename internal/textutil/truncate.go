// SPDX-License-Identifier: MIT

// Package textutil holds small string helpers shared by the logging-heavy
// packages.
package textutil

import (
	"fmt"
	"strings"
)

// TruncateMiddle renders v as a single line and, when longer than length,
// cuts it in the middle, joining the ends with " ... ". Lengths of 5 or less
// cannot hold any content around the separator and collapse to it entirely.
//
//	TruncateMiddle("abcdefghijkijklmnopqrst", 10) == "abc ... st"
func TruncateMiddle(v any, length int) string {
	if length <= 5 {
		return " ... "
	}
	text := strings.TrimSpace(strings.ReplaceAll(fmt.Sprint(v), "\n", " "))
	if len(text) > length {
		beginLen := (length - 5) / 2
		endLen := beginLen
		beginLen += (length - 5) % 2
		text = text[:beginLen] + " ... " + text[len(text)-endLen:]
	}
	return text
}
