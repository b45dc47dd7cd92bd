package chat

import (
	"fmt"
	"strconv"
	"strings"
)

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Naira formats an amount with thousands separators, e.g. ₦12,500.
func Naira(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// Escape neutralises user supplied text inside a Markdown reply.
func Escape(text string) string {
	return markdownEscaper.Replace(text)
}
