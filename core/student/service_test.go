package student

import (
	"context"
	"testing"
	"time"
)

// codeRepo stubs just enough of Repository for Add.
type codeRepo struct {
	Repository
	max      int
	failures int // CreateStudent returns ErrCodeTaken this many times
	created  []Student
}

func (r *codeRepo) MaxCodeNumber(ctx context.Context) (int, error) {
	return r.max, nil
}

func (r *codeRepo) CreateStudent(ctx context.Context, st Student) (Student, error) {
	if r.failures > 0 {
		r.failures--
		r.max++ // someone else claimed the number
		return Student{}, ErrCodeTaken
	}
	st.ID = "generated"
	r.created = append(r.created, st)
	return st, nil
}

func TestService_Add(t *testing.T) {
	ns := NewStudent{
		Name:     "Aarav Naik",
		DOB:      time.Now().AddDate(-6, 0, 0),
		Grade:    "1st",
		Division: "a",
	}

	tests := []struct {
		name     string
		repo     *codeRepo
		wantCode string
		wantErr  error
	}{
		{name: "first student", repo: &codeRepo{}, wantCode: "sid01"},
		{name: "next in sequence", repo: &codeRepo{max: 41}, wantCode: "sid42"},
		{name: "retries after lost race", repo: &codeRepo{max: 1, failures: 2}, wantCode: "sid04"},
		{name: "gives up eventually", repo: &codeRepo{failures: 5}, wantErr: ErrCodeTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo)
			st, err := svc.Add(context.Background(), ns)
			if err != tt.wantErr {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(tt.repo.created) != 0 {
					t.Errorf("Add() persisted %d students, want none", len(tt.repo.created))
				}
				return
			}
			if st.Code != tt.wantCode {
				t.Errorf("Add() code = %q, want %q", st.Code, tt.wantCode)
			}
			if st.Name != ns.Name || st.Grade != ns.Grade || st.Division != ns.Division {
				t.Errorf("Add() = %+v, fields do not match input", st)
			}
			if st.CreatedAt.IsZero() || !st.CreatedAt.Equal(st.UpdatedAt) {
				t.Errorf("Add() timestamps = %v / %v", st.CreatedAt, st.UpdatedAt)
			}
		})
	}
}
