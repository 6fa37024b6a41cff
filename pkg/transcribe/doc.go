// Package transcribe converts downloaded audio into text, either through the
// hosted Whisper API or an offline whisper install.
package transcribe
