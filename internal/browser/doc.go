// Package browser drives the course registration portal through a Chrome
// instance controlled with go-rod.
//
// A Session owns the browser and the portal tab. GridSource exposes the
// tab's results grid as a harvest.RowSource, and NetworkTransport lets a
// capture.Interceptor observe the page's API responses through the DevTools
// network events without touching the requests.
package browser
