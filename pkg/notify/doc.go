// Package notify delivers video summaries by email.
package notify
