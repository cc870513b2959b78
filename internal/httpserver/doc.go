// Package httpserver serves the public file listing, downloads, and the
// admin panel over HTTP using gin.
//
// The public surface shows only published files; downloads of unpublished
// files answer 403 and unknown names 404. The admin panel lives at a
// secret route (configured or generated per process) behind HTTP Basic
// auth with constant-time credential comparison. Requests are logged
// through zap, and Run shuts the listener down gracefully when its
// context is cancelled.
package httpserver
