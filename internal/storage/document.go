package storage

import (
	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/course"
)

// ExportedBy identifies the producer in export metadata.
const ExportedBy = "TimeBox Course Parser v1.0"

// Document is the exported capture artifact.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Courses  []ExportRecord `json:"courses"`
}

// Metadata describes an export.
type Metadata struct {
	Timestamp   string `json:"timestamp"`
	RecordCount int    `json:"recordCount"`
	ExportedBy  string `json:"exportedBy"`
}

// ExportRecord is the localized projection of one portal record. Fields the
// record lacks are omitted; Raw keeps the record verbatim.
type ExportRecord struct {
	CourseName      any `json:"과목명,omitempty"`
	CourseNumber    any `json:"과목번호,omitempty"`
	Credit          any `json:"학점,omitempty"`
	Section         any `json:"분반,omitempty"`
	Professor       any `json:"교수,omitempty"`
	ProfessorNumber any `json:"교수번호,omitempty"`
	Time            any `json:"시간,omitempty"`
	Week            any `json:"주차,omitempty"`
	Enrolled        any `json:"수강인원,omitempty"`
	OtherEnrolled   any `json:"타전공수강인원,omitempty"`
	GradeLimit      any `json:"수강제한학년,omitempty"`
	Category        any `json:"이수구분,omitempty"`
	CategoryCode    any `json:"이수구분코드,omitempty"`
	Area            any `json:"과목영역,omitempty"`
	Evaluation      any `json:"평가방법,omitempty"`
	OnlineType      any `json:"온라인타입,omitempty"`
	DepartmentCode  any `json:"학과코드,omitempty"`

	Raw course.Record `json:"_raw"`
}

// Project builds the localized projection of r.
func Project(r course.Record) ExportRecord {
	return ExportRecord{
		CourseName:      r[course.FieldCourseName],
		CourseNumber:    r[course.FieldCourseNumber],
		Credit:          r[course.FieldCredit],
		Section:         r[course.FieldSection],
		Professor:       r[course.FieldProfessor],
		ProfessorNumber: r[course.FieldProfessorNo],
		Time:            r[course.FieldTime],
		Week:            r[course.FieldWeek],
		Enrolled:        r[course.FieldEnrolled],
		OtherEnrolled:   r[course.FieldOtherEnrolled],
		GradeLimit:      r[course.FieldGrade],
		Category:        r[course.FieldCategory],
		CategoryCode:    r[course.FieldCategoryCode],
		Area:            r[course.FieldArea],
		Evaluation:      r[course.FieldEvaluation],
		OnlineType:      r[course.FieldOnlineType],
		DepartmentCode:  r[course.FieldDepartmentCode],
		Raw:             r,
	}
}

// NewDocument builds the export document for b.
func NewDocument(b capture.Batch) Document {
	records := make([]ExportRecord, 0, len(b.Records))
	for _, r := range b.Records {
		records = append(records, Project(r))
	}
	return Document{
		Metadata: Metadata{
			Timestamp:   b.Timestamp,
			RecordCount: len(b.Records),
			ExportedBy:  ExportedBy,
		},
		Courses: records,
	}
}
