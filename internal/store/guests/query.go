package guests

import (
	"fmt"
	"strings"

	"github.com/anandwan/awaas-backend/internal/occupancy"
)

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// addPredicate appends the predicate's comparisons. Each field maps to exactly one
// SQL comparison with the same strictness as occupancy.Predicate.Matches.
func (w *where) addPredicate(p occupancy.Predicate) {
	if p.ArrivalAtOrBefore != nil {
		w.add("arrival_date <= $%d", *p.ArrivalAtOrBefore)
	}
	if p.ArrivalAfter != nil {
		w.add("arrival_date > $%d", *p.ArrivalAfter)
	}
	if p.DepartureAtOrAfter != nil {
		w.add("departure_date >= $%d", *p.DepartureAtOrAfter)
	}
	if p.DepartureBefore != nil {
		w.add("departure_date < $%d", *p.DepartureBefore)
	}
	if p.MealRequired != nil {
		w.add("meal_required = $%d", *p.MealRequired)
	}
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for the argument appended after the conditions.
func (w *where) next(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
