package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successColor.Sprint("✅"), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warningColor.Sprint("⚠️ "), fmt.Sprintf(format, args...))
}

func printHeader(w io.Writer, text string) {
	fmt.Fprintf(w, "\n%s\n", infoColor.Sprint(text))
}

func printKeyValue(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "%s %s %v\n", successColor.Sprint("✔"), dimColor.Sprint(key+" ="), value)
}
