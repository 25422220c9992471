package debuginfos

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatSample renders a metric value for humans. Memory values are shown in
// MB, cpu values as whole percentages, everything else grouped by thousands
// with two decimals when the value is not integral.
func FormatSample(name string, value float64) string {
	if value == 0 {
		return "0"
	}
	suffix := ""
	if strings.Contains(name, "memory") {
		value = value / (1024 * 1024)
		suffix = "MB"
	}
	if strings.Contains(name, "cpu") {
		return strconv.FormatInt(int64(math.RoundToEven(value*100)), 10) + "%"
	}
	if math.Mod(value, 1) == 0 {
		return printer.Sprintf("%d", int64(value)) + suffix
	}

	formatted := printer.Sprintf("%.2f", value)
	switch {
	case strings.HasPrefix(formatted, "0."):
		formatted = formatted[1:]
	case strings.HasPrefix(formatted, "-0."):
		formatted = "-" + formatted[2:]
	}
	return formatted + suffix
}
