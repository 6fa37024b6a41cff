// Package summarize turns a video transcript into a bullet-point digest
// using an OpenAI chat model.
package summarize
