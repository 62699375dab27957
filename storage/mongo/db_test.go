package mongo

import (
	"testing"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

func Test_isDup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{
			name: "write exception dup",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}},
			want: true,
		},
		{
			name: "write exception other code",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121}}},
		},
		{
			name: "wrapped write exception dup",
			err:  errors.Wrap(mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}, "creating student"),
			want: true,
		},
		{
			name: "bulk write exception dup",
			err: mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
				{WriteError: mongo.WriteError{Code: 11000}},
			}},
			want: true,
		},
		{
			name: "command error dup",
			err:  mongo.CommandError{Code: 11000},
			want: true,
		},
		{
			name: "command error other code",
			err:  mongo.CommandError{Code: 13},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDup(tt.err); got != tt.want {
				t.Errorf("isDup() = %v, want %v", got, tt.want)
			}
		})
	}
}
