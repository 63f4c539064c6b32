// Package course provides the canonical course model for timebox.
//
// The course package defines days, half-open time intervals and weekly
// schedules, parses the portal's free-text schedule strings ("월09:00~10:00,
// 수09:00~10:00") into structured intervals, and projects raw portal API
// records into Course values. It also derives the composite key the grid
// harvester uses to recognise rows it has already collected.
package course
