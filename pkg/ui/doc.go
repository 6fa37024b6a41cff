// Package ui prints human-facing status lines for the ytdigest commands.
// Output goes to stderr by default and can be silenced with SetQuietMode.
package ui
