package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ASCIILogo is shown by interactive commands
const ASCIILogo = `
    ╔═══════════════════════════════════════════════╗
    ║ ██╗   ██╗████████╗██████╗ ██╗ ██████╗ ███████╗ ║
    ║ ╚██╗ ██╔╝╚══██╔══╝██╔══██╗██║██╔════╝ ██╔════╝ ║
    ║  ╚████╔╝    ██║   ██║  ██║██║██║  ███╗█████╗   ║
    ║   ╚██╔╝     ██║   ██║  ██║██║██║   ██║██╔══╝   ║
    ║    ██║      ██║   ██████╔╝██║╚██████╔╝███████╗ ║
    ║    ╚═╝      ╚═╝   ╚═════╝ ╚═╝ ╚═════╝ ╚══════╝ ║
    ║       CHANNEL WATCHER - VIDEO DIGEST MAILER     ║
    ╚═══════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	mu        sync.Mutex
	out       io.Writer = os.Stderr
	quietMode bool
	noColor   bool
)

// SetOutput redirects all status output. It defaults to stderr so that
// command results on stdout stay machine readable.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// SetNoColor disables ANSI colors
func SetNoColor(disabled bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disabled
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		mu.Lock()
		plain := noColor
		mu.Unlock()
		if plain {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func write(always bool, text string) {
	mu.Lock()
	w, quiet := out, quietMode
	mu.Unlock()
	if quiet && !always {
		return
	}
	fmt.Fprintln(w, text)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	write(false, Cyan(ASCIILogo))
}

// PrintError prints an error message in red, even in quiet mode
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		write(true, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		write(true, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	write(false, Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	write(false, fmt.Sprintf("%s: %s", Cyan(label), Yellow(value)))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		write(false, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		write(false, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	write(false, Magenta(msg))
}

// PrintList prints indented bullet lines
func PrintList(items []string) {
	for _, item := range items {
		write(false, "  - "+item)
	}
}
