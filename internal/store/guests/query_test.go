package guests

import (
	"testing"
	"time"

	"github.com/anandwan/awaas-backend/internal/occupancy"
)

func TestWherePredicate(t *testing.T) {
	w := occupancy.ComputeDayWindow(time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC), 330)

	tests := []struct {
		name  string
		p     occupancy.Predicate
		sql   string
		nargs int
	}{
		{"all", occupancy.Predicate{}, "", 0},
		{"current", occupancy.StatusPredicate(occupancy.StatusCurrent, w),
			" WHERE arrival_date <= $1 AND departure_date >= $2", 2},
		{"upcoming", occupancy.StatusPredicate(occupancy.StatusUpcoming, w),
			" WHERE arrival_date > $1", 1},
		{"completed", occupancy.StatusPredicate(occupancy.StatusCompleted, w),
			" WHERE departure_date < $1", 1},
		{"meal", occupancy.MealPredicate(true), " WHERE meal_required = $1", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &where{}
			b.addPredicate(tc.p)
			if got := b.sql(); got != tc.sql {
				t.Fatalf("sql = %q, want %q", got, tc.sql)
			}
			if len(b.args) != tc.nargs {
				t.Fatalf("args = %v, want %d", b.args, tc.nargs)
			}
		})
	}
}

func TestWhereCurrentArgsAreWindowEdges(t *testing.T) {
	w := occupancy.ComputeDayWindow(time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC), 330)
	b := &where{}
	b.addPredicate(occupancy.StatusPredicate(occupancy.StatusCurrent, w))

	if end, ok := b.args[0].(time.Time); !ok || !end.Equal(w.EndUTC) {
		t.Errorf("arg 1 = %v, want window end %s", b.args[0], w.EndUTC)
	}
	if start, ok := b.args[1].(time.Time); !ok || !start.Equal(w.StartUTC) {
		t.Errorf("arg 2 = %v, want window start %s", b.args[1], w.StartUTC)
	}
}

func TestWhereSearchReusesPlaceholder(t *testing.T) {
	b := &where{}
	b.add("group_type = $%d", "family")
	b.add("(full_name ILIKE $%[1]d OR phone ILIKE $%[1]d)", "%ram%")
	limit := b.next(20)

	want := " WHERE group_type = $1 AND (full_name ILIKE $2 OR phone ILIKE $2)"
	if got := b.sql(); got != want {
		t.Fatalf("sql = %q, want %q", got, want)
	}
	if limit != "$3" || len(b.args) != 3 {
		t.Fatalf("limit placeholder = %s, args = %v", limit, b.args)
	}
}
