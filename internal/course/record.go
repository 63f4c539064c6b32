package course

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a raw course record as delivered by the portal. It is kept
// verbatim next to any projection derived from it.
type Record map[string]any

// Portal API field names.
const (
	FieldCourseName     = "SBJT_NM"
	FieldCourseNumber   = "SBJT_NO_DCLSS"
	FieldCredit         = "PNT"
	FieldSection        = "OPEN_DCLSS"
	FieldProfessor      = "PROFESSOR"
	FieldProfessorNo    = "PROFESSOR_NO"
	FieldTime           = "TIME"
	FieldWeek           = "WEEK"
	FieldEnrolled       = "SUGANG_CNT"
	FieldOtherEnrolled  = "OTH_SUGANG_CNT"
	FieldGrade          = "OBJ_SHYR_NM"
	FieldCategory       = "MY_CPTN"
	FieldCategoryCode   = "MY_CPTN_CD"
	FieldArea           = "SBJT_AREA_CD"
	FieldEvaluation     = "MRKEV_MTHD_CD"
	FieldOnlineType     = "ONLINE_TYPE_NM"
	FieldDepartmentCode = "OPEN_SUST_MJ_CD"
)

// String returns the field as text. Numbers are formatted without a trailing
// ".0"; missing and null fields yield "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int returns the field as an integer, or 0 if it is absent or not numeric.
func (r Record) Int(key string) int {
	return atoi(r.String(key))
}

// FromRecord projects a portal API record into a Course.
func FromRecord(r Record) (Course, error) {
	c := Course{
		Department:   r.String(FieldDepartmentCode),
		Grade:        r.String(FieldGrade),
		CourseName:   r.String(FieldCourseName),
		Section:      r.String(FieldSection),
		Category:     r.String(FieldCategory),
		Credit:       r.Int(FieldCredit),
		CreditText:   r.String(FieldCredit),
		ClassType:    r.String(FieldOnlineType),
		Professor:    r.String(FieldProfessor),
		ScheduleText: r.String(FieldTime),
	}
	if c.CourseName == "" {
		return Course{}, ErrMissingName
	}
	c.Schedule = ParseSchedule(c.ScheduleText)
	return c, nil
}

// FromRecords projects every record that has a course name, keeping order.
func FromRecords(records []Record) []Course {
	courses := make([]Course, 0, len(records))
	for _, r := range records {
		c, err := FromRecord(r)
		if err != nil {
			continue
		}
		courses = append(courses, c)
	}
	return courses
}

// CompositeKey derives the harvester's row identity from every displayed
// field, including the raw schedule and credit text.
func CompositeKey(c Course) string {
	credit := c.CreditText
	if credit == "" {
		credit = strconv.Itoa(c.Credit)
	}
	fields := []string{
		c.Department,
		c.Grade,
		c.CourseName,
		c.Section,
		c.Category,
		credit,
		c.ClassType,
		c.ScheduleText,
		c.Professor,
	}
	h := sha1.New()
	h.Write([]byte(strings.Join(fields, "|")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// atoi parses integer text, accepting a decimal part ("3.0"). Anything else
// yields 0.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// ParseCredit parses a credit cell as displayed in the grid.
func ParseCredit(s string) int {
	return atoi(s)
}
