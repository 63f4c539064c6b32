// Package storage reads course lists supplied by the user and writes the
// exported capture documents.
//
// Exports go to a single directory (by default ~/.local/share/timebox).
// A network capture is written as a document with export metadata and a
// localized projection of every record (수강신청목록_<timestamp>.json); a
// grid sweep is written as a plain JSON array of courses
// (timebox_courses_<date>.json), the same shape LoadCourses accepts.
package storage
