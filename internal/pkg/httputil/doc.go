// Package httputil holds the small response/request helpers shared by the
// subscribe endpoint, the static asset server and the health routes.
package httputil
