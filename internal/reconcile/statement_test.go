package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatement_Render(t *testing.T) {
	tests := []struct {
		name string
		stmt Statement
		want string
	}{
		{
			name: "strings are quoted",
			stmt: Statement{SQL: "VALUES (?, ?)", Args: []any{"a", "b"}},
			want: "VALUES ('a', 'b')",
		},
		{
			name: "embedded quotes are doubled",
			stmt: Statement{SQL: "VALUES (?)", Args: []any{"Ben O'Connor"}},
			want: "VALUES ('Ben O''Connor')",
		},
		{
			name: "integral floats render without decimal point",
			stmt: Statement{SQL: "VALUES (?)", Args: []any{float64(82)}},
			want: "VALUES (82)",
		},
		{
			name: "fractional floats keep their fraction",
			stmt: Statement{SQL: "VALUES (?)", Args: []any{79.5}},
			want: "VALUES (79.5)",
		},
		{
			name: "nil renders as NULL",
			stmt: Statement{SQL: "VALUES (?)", Args: []any{nil}},
			want: "VALUES (NULL)",
		},
		{
			name: "surplus placeholders stay literal",
			stmt: Statement{SQL: "VALUES (?, ?)", Args: []any{"a"}},
			want: "VALUES ('a', ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stmt.Render())
		})
	}
}
