package actor

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"HEAD", RoleHead, false},
		{"TEACHER", RoleTeacher, false},
		{"head", RoleHead, false},
		{" teacher ", RoleTeacher, false},
		{"ADMIN", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseRole(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q) returned unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanSeeNotification(t *testing.T) {
	head := Actor{Role: RoleHead}
	teacher := Actor{Role: RoleTeacher, Course: "BasicComputers"}

	cases := []struct {
		name         string
		a            Actor
		targetRole   string
		targetCourse string
		want         bool
	}{
		{"head sees ALL", head, "ALL", "", true},
		{"head sees HEAD", head, "HEAD", "", true},
		{"head never sees TEACHER-only", head, "TEACHER", "", false},
		{"head ignores course filter", head, "ALL", "Tailoring", true},
		{"teacher sees ALL broadcast", teacher, "ALL", "", true},
		{"teacher sees own course", teacher, "TEACHER", "BasicComputers", true},
		{"teacher blind to other course", teacher, "TEACHER", "Tailoring", false},
		{"teacher blind to HEAD-only", teacher, "HEAD", "", false},
		{"teacher sees course-less TEACHER event", teacher, "TEACHER", "", true},
		{"teacher blind to ALL for other course", teacher, "ALL", "Tailoring", false},
	}
	for _, c := range cases {
		if got := c.a.CanSeeNotification(c.targetRole, c.targetCourse); got != c.want {
			t.Errorf("%s: CanSeeNotification(%q, %q) = %v, want %v",
				c.name, c.targetRole, c.targetCourse, got, c.want)
		}
	}
}
