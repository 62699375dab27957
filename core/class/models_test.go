package class

import "testing"

func TestClass_DeriveCode(t *testing.T) {
	tests := []struct {
		name string
		c    Class
		want string
	}{
		{name: "lowercase section", c: Class{Grade: "5th", Section: "b", AcademicYear: "2025-2026"}, want: "5thB-2025-2026"},
		{name: "uppercase section kept", c: Class{Grade: "10th", Section: "A", AcademicYear: "2026-2027"}, want: "10thA-2026-2027"},
		{name: "named grade", c: Class{Grade: "nursery", Section: "c", AcademicYear: "2025-2026"}, want: "nurseryC-2025-2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.DeriveCode(); got != tt.want {
				t.Errorf("DeriveCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClass_teacherChecks(t *testing.T) {
	c := Class{
		ClassTeacherIDs: []string{"t1", "t2"},
		SubjectTeachers: []SubjectTeacher{
			{Subject: "math", TeacherID: "t3"},
			{Subject: "science", TeacherID: "t1"},
		},
	}
	if !c.HasClassTeacher("t2") {
		t.Error("HasClassTeacher(t2) = false, want true")
	}
	if c.HasClassTeacher("t3") {
		t.Error("HasClassTeacher(t3) = true, want false")
	}
	if !c.TeachesSubject("t3") {
		t.Error("TeachesSubject(t3) = false, want true")
	}
	if c.TeachesSubject("t2") {
		t.Error("TeachesSubject(t2) = true, want false")
	}
}

func Test_checkUniqueSubjects(t *testing.T) {
	tests := []struct {
		name    string
		sts     []SubjectTeacher
		wantErr bool
	}{
		{name: "empty", sts: nil},
		{name: "distinct", sts: []SubjectTeacher{{Subject: "math"}, {Subject: "science"}}},
		{name: "duplicate ignoring case", sts: []SubjectTeacher{{Subject: "Math"}, {Subject: "math"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkUniqueSubjects(tt.sts); (err != nil) != tt.wantErr {
				t.Errorf("checkUniqueSubjects() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
